package sdat

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"k8s.io/klog/v2"
)

// Versions at or above this carry two metadata lines (stash sizes)
// after the header.
const metadataVersion = 2

type lineReader struct {
	r    *bufio.Reader
	line int
}

// next returns the next line without its line ending. ok is false once
// the input is exhausted.
func (lr *lineReader) next() (text string, ok bool, err error) {
	s, err := lr.r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", false, fmt.Errorf("%w: transfer list line %d: %w", ErrReadFailure, lr.line+1, err)
	}
	if err == io.EOF && s == "" {
		return "", false, nil
	}
	lr.line++
	return strings.TrimRight(s, "\r\n"), true, nil
}

// nextField splits the first whitespace-delimited field off s.
func nextField(s string) (field, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i:]
}

// readHeader reads the version and new block count, which may share a
// line or sit on consecutive lines. It returns whatever followed the
// second field on its line.
func readHeader(lr *lineReader, h *Header) (string, error) {
	var fields []int
	var rest string
	for len(fields) < 2 {
		line, ok, err := lr.next()
		if err != nil {
			return "", err
		}
		if !ok {
			return "", &ParseError{
				Line: lr.line,
				Kind: ErrMalformedHeader,
				Err:  fmt.Errorf("expected 2 header fields, found %d", len(fields)),
			}
		}

		rest = line
		for len(fields) < 2 {
			var field string
			field, rest = nextField(rest)
			if field == "" {
				break
			}
			n, err := strconv.Atoi(field)
			if err != nil {
				return "", &ParseError{Line: lr.line, Text: line, Kind: ErrMalformedHeader, Err: err}
			}
			fields = append(fields, n)
		}
	}

	h.Version = fields[0]
	h.NewBlocks = fields[1]
	return rest, nil
}

func parseIndex(tok string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(tok), 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value %d", n)
	}
	if n > MaxBlocks {
		return 0, fmt.Errorf("value %d exceeds block limit %d", n, int64(MaxBlocks))
	}
	return n, nil
}

// parseRanges does the work for ParseRangeString; its errors describe
// the violation without the error kind.
func parseRanges(s string) ([]BlockRange, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New("missing count")
	}

	tokens := strings.Split(s, ",")
	n, err := parseIndex(tokens[0])
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}
	if n == 0 || n%2 != 0 {
		return nil, fmt.Errorf("count %d is not a positive even number", n)
	}
	values := tokens[1:]
	if int64(len(values)) != n {
		return nil, fmt.Errorf("count %d declared but %d values follow", n, len(values))
	}

	ranges := make([]BlockRange, 0, n/2)
	for i := 0; i < len(values); i += 2 {
		start, err := parseIndex(values[i])
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i+1, err)
		}
		end, err := parseIndex(values[i+1])
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i+2, err)
		}
		ranges = append(ranges, BlockRange{Start: start, End: end})
	}
	return ranges, nil
}

// ParseRangeString parses a range string of the form
// "N,s1,e1,...,sk,ek", where N is the count of integers following it.
// The ranges are returned in the order they appear and are not checked
// for Start < End.
func ParseRangeString(s string) ([]BlockRange, error) {
	ranges, err := parseRanges(s)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidRangeString, s, err)
	}
	return ranges, nil
}

func (tl *TransferList) handleLine(text string, lineno int) error {
	cmd, rest := nextField(text)
	if cmd == "" {
		return nil
	}

	if cmd != CommandNew {
		// Bare numbers are stash metadata, not commands.
		if _, err := strconv.ParseInt(cmd, 10, 64); err == nil {
			klog.V(4).Infof("transfer list line %d: skipping metadata %q", lineno, text)
			return nil
		}
		tl.Skipped[cmd]++
		klog.V(4).Infof("transfer list line %d: skipping %q command", lineno, cmd)
		return nil
	}

	ranges, err := parseRanges(rest)
	if err != nil {
		return &ParseError{Line: lineno, Text: text, Kind: ErrInvalidRangeString, Err: err}
	}
	tl.Commands = append(tl.Commands, ranges...)
	return nil
}

// ReadTransferList parses a transfer list. Only "new" commands
// contribute ranges; every other command is counted in Skipped and
// otherwise ignored. A malformed "new" line aborts the read, since
// dropping it would misalign every block after it.
func ReadTransferList(r io.Reader) (*TransferList, error) {
	lr := &lineReader{r: bufio.NewReader(r)}
	tl := &TransferList{Skipped: map[string]int{}}

	rest, err := readHeader(lr, &tl.Header)
	if err != nil {
		return nil, err
	}
	klog.V(3).Infof("transfer list version %d, %d new blocks", tl.Header.Version, tl.Header.NewBlocks)

	if tl.Header.Version >= metadataVersion {
		if _, _, err = lr.next(); err != nil {
			return nil, err
		}
	} else if err = tl.handleLine(rest, lr.line); err != nil {
		return nil, err
	}

	for {
		line, ok, err := lr.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if err = tl.handleLine(line, lr.line); err != nil {
			return nil, err
		}
	}

	return tl, nil
}

// LoadTransferList opens and parses the transfer list at path.
func LoadTransferList(path string) (*TransferList, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: transfer list: %w", ErrResourceOpen, err)
	}
	defer file.Close()

	return ReadTransferList(file)
}

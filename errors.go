package sdat

import "fmt"

// ParseError reports a transfer list line that could not be parsed.
type ParseError struct {
	Line int    // 1-based line number
	Text string // the raw line, without its newline
	Kind error
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: line %d %q: %v", e.Kind, e.Line, e.Text, e.Err)
	}
	return fmt.Sprintf("%v: line %d %q", e.Kind, e.Line, e.Text)
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// WriteError reports where image reconstruction stopped.
type WriteError struct {
	Index      int        // index of the range in the CommandSet
	Range      BlockRange // the range being written
	Block      int64      // block within the range
	Offset     int64      // output byte offset
	DataOffset int64      // data file byte offset
	Kind       error
	Err        error
}

func (e *WriteError) Error() string {
	msg := fmt.Sprintf("%v: range %d %v, block %d (image offset %d, data offset %d)",
		e.Kind, e.Index, e.Range, e.Block, e.Offset, e.DataOffset)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *WriteError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

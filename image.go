package sdat

import (
	"fmt"
	"io"
	"os"

	"k8s.io/klog/v2"
)

type writerState int

const (
	stateIdle writerState = iota
	stateDone
	stateFailed
)

// A Writer replays a CommandSet against a data stream. The data stream
// is only ever read forward; each range moves the output position to
// the range's first block. A Writer is used once.
type Writer struct {
	out   io.WriterAt
	data  io.Reader
	buf   []byte
	state writerState

	dataOffset int64
	written    int64
}

// NewWriter returns a Writer that reads blocks from data and places
// them in out.
func NewWriter(out io.WriterAt, data io.Reader) *Writer {
	return &Writer{
		out:  out,
		data: data,
		buf:  make([]byte, BlockSize),
	}
}

// Written returns the number of blocks written so far.
func (w *Writer) Written() int64 {
	return w.written
}

// DataOffset returns how many bytes of the data stream have been
// consumed.
func (w *Writer) DataOffset() int64 {
	return w.dataOffset
}

func (w *Writer) fail(err error) error {
	w.state = stateFailed
	return err
}

func (w *Writer) copyBlock(index int, r BlockRange, j int64) error {
	werr := &WriteError{
		Index:      index,
		Range:      r,
		Block:      j,
		Offset:     r.BlockOffset(j),
		DataOffset: w.dataOffset,
	}

	n, err := io.ReadFull(w.data, w.buf)
	w.dataOffset += int64(n)
	switch err {
	case nil:
	case io.EOF, io.ErrUnexpectedEOF:
		werr.Kind = ErrTruncatedSource
		werr.Err = fmt.Errorf("read %d of %d bytes", n, BlockSize)
		return werr
	default:
		werr.Kind = ErrReadFailure
		werr.Err = err
		return werr
	}

	n, err = w.out.WriteAt(w.buf, werr.Offset)
	if err == nil && n != BlockSize {
		err = io.ErrShortWrite
	}
	if err != nil {
		werr.Kind = ErrWriteFailure
		werr.Err = err
		return werr
	}

	w.written++
	return nil
}

// Apply writes every range in cs, in order. It stops at the first
// error; the image is incomplete in that case and the Writer cannot be
// used again.
func (w *Writer) Apply(cs CommandSet) error {
	if w.state == stateDone || w.state == stateFailed {
		return ErrWriterFinished
	}

	for i, r := range cs {
		if !r.Valid() {
			werr := &WriteError{
				Index:      i,
				Range:      r,
				DataOffset: w.dataOffset,
				Kind:       ErrInvalidRange,
			}
			if r.Start >= 0 && r.Start <= MaxBlocks {
				werr.Offset = r.Offset()
			}
			return w.fail(werr)
		}

		klog.V(3).Infof("writing %d blocks to block %d", r.Len(), r.Start)
		for j := int64(0); j < r.Len(); j++ {
			if err := w.copyBlock(i, r, j); err != nil {
				return w.fail(err)
			}
		}
	}

	w.state = stateDone
	return nil
}

// WriteImage copies the blocks named by cs from data into out and
// returns the number of blocks written.
func WriteImage(out io.WriterAt, data io.Reader, cs CommandSet) (int64, error) {
	w := NewWriter(out, data)
	err := w.Apply(cs)
	return w.Written(), err
}

// Options control CreateImage.
type Options struct {
	// Strict runs Validate before anything is opened.
	Strict bool

	// Progress, if not nil, wraps the data file reader. size is the
	// number of bytes that will be read from it.
	Progress func(r io.Reader, size int64) io.Reader
}

// extend grows a regular file to at least size bytes so that trailing
// blocks no range touched are still part of the image.
func extend(out *os.File, size int64) error {
	fi, err := out.Stat()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	if !fi.Mode().IsRegular() || fi.Size() >= size {
		return nil
	}
	if err = out.Truncate(size); err != nil {
		return fmt.Errorf("%w: extending image to %d bytes: %w", ErrWriteFailure, size, err)
	}
	return nil
}

// CreateImage builds the image at output from the data file and the
// parsed transfer list. Both files are closed before it returns. On
// error the output may hold a partial image.
func CreateImage(output, data string, tl *TransferList, opts Options) (err error) {
	if opts.Strict {
		if err = Validate(tl); err != nil {
			return err
		}
	}

	src, err := os.Open(data)
	if err != nil {
		return fmt.Errorf("%w: data file: %w", ErrResourceOpen, err)
	}
	defer src.Close()

	out, err := os.OpenFile(output, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("%w: output image: %w", ErrResourceOpen, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: closing %s: %w", ErrWriteFailure, output, cerr)
		}
	}()

	var r io.Reader = src
	if opts.Progress != nil {
		r = opts.Progress(src, tl.Commands.Blocks()*BlockSize)
	}

	if _, err = WriteImage(out, r, tl.Commands); err != nil {
		return err
	}

	if err = extend(out, tl.Commands.ImageSize()); err != nil {
		return err
	}

	if err = out.Sync(); err != nil {
		return fmt.Errorf("%w: syncing %s: %w", ErrWriteFailure, output, err)
	}
	return nil
}

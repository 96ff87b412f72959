// Package sdat rebuilds flat block images from the sparse data
// format used by Android block-based OTA packages. A package ships a
// system.transfer.list, which says where each run of blocks lands in
// the partition, and a system.new.dat, which holds the payload of
// every "new" block back to back in the order the transfer list names
// them.
//
// Reading the transfer list produces a CommandSet; writing replays
// that CommandSet against the data stream into an image.
package sdat

// See https://source.android.com/docs/core/ota/tools for the format.

import (
	"errors"
	"fmt"
)

// BlockSize is the size of a single block in bytes, both in the data
// file and in the output image.
const BlockSize = 4096

// DefaultOutput is the image name used when none is given.
const DefaultOutput = "system.img"

// Error kinds. Every error returned by this package matches one of
// these with errors.Is.
var (
	ErrResourceOpen       = errors.New("sdat: unable to open resource")
	ErrMalformedHeader    = errors.New("sdat: malformed transfer list header")
	ErrInvalidRangeString = errors.New("sdat: invalid range string")
	ErrInvalidRange       = errors.New("sdat: invalid block range")
	ErrTruncatedSource    = errors.New("sdat: unexpected end of data file")
	ErrReadFailure        = errors.New("sdat: data file read failed")
	ErrWriteFailure       = errors.New("sdat: image write failed")
	ErrOverlappingRange   = errors.New("sdat: overlapping block ranges")
	ErrBlockCountMismatch = errors.New("sdat: new block count mismatch")
	ErrWriterFinished     = errors.New("sdat: writer already finished")
)

// CommandNew is the only transfer list command that carries data.
const CommandNew = "new"

// BlockRange is a half-open range of blocks [Start, End) in the output
// image.
type BlockRange struct {
	Start int64 `json:"start" yaml:"start"`
	End   int64 `json:"end" yaml:"end"`
}

func (r BlockRange) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// A CommandSet is the ordered list of ranges that the data file fills.
// Order matters: it is the order blocks are read from the data file.
type CommandSet []BlockRange

// Header holds the leading fields of a transfer list.
type Header struct {
	Version   int `json:"version" yaml:"version"`
	NewBlocks int `json:"new_blocks" yaml:"new_blocks"`
}

// TransferList is a parsed transfer list.
type TransferList struct {
	Header   Header
	Commands CommandSet

	// Skipped counts command lines other than "new", keyed by their
	// first field. Lines starting with a number are metadata and are
	// not counted.
	Skipped map[string]int
}

// VersionName returns the Android release that introduced a transfer
// list version.
func VersionName(version int) string {
	switch version {
	case 1:
		return "Android 5.0 (Lollipop)"
	case 2:
		return "Android 5.1 (Lollipop)"
	case 3:
		return "Android 6.x (Marshmallow)"
	case 4:
		return "Android 7.x/8.x (Nougat/Oreo) or later"
	default:
		return "unknown"
	}
}

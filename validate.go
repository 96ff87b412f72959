package sdat

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// MaxStrictBlocks bounds the image size Validate will track, 1 TiB at
// the standard block size.
const MaxStrictBlocks = 1 << 28

// Validate checks a transfer list more strictly than reading or
// writing does: every range must be non-empty, no block may be written
// twice, and the header's new block count must match the number of
// blocks the ranges read from the data file.
func Validate(tl *TransferList) error {
	var seen bitset.BitSet

	for i, r := range tl.Commands {
		if !r.Valid() {
			return fmt.Errorf("%w: range %d %v is empty", ErrInvalidRange, i, r)
		}
		if r.End > MaxStrictBlocks {
			return fmt.Errorf("%w: range %d %v ends past block %d", ErrInvalidRange, i, r, MaxStrictBlocks)
		}

		for b := r.Start; b < r.End; b++ {
			if seen.Test(uint(b)) {
				return fmt.Errorf("%w: range %d %v rewrites block %d", ErrOverlappingRange, i, r, b)
			}
			seen.Set(uint(b))
		}
	}

	if demand := tl.Commands.Blocks(); demand != int64(tl.Header.NewBlocks) {
		return fmt.Errorf("%w: header declares %d, ranges cover %d",
			ErrBlockCountMismatch, tl.Header.NewBlocks, demand)
	}
	return nil
}

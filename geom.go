package sdat

import "math"

// MaxBlocks is one past the highest block index whose byte offset is
// representable as an int64.
const MaxBlocks = math.MaxInt64 / BlockSize

// Len returns the number of blocks in the range. It is not positive
// for an invalid range.
func (r BlockRange) Len() int64 {
	return r.End - r.Start
}

// Offset returns the byte offset of the first block of the range in
// the image.
func (r BlockRange) Offset() int64 {
	return r.Start * BlockSize
}

// BlockOffset computes the image byte offset of the j-th block of the
// range.
func (r BlockRange) BlockOffset(j int64) int64 {
	return (r.Start + j) * BlockSize
}

// Valid reports whether the range covers at least one block, starts
// at a non-negative index and ends at or before MaxBlocks.
func (r BlockRange) Valid() bool {
	return r.Start >= 0 && r.End > r.Start && r.End <= MaxBlocks
}

// Blocks returns the number of blocks the command set reads from the
// data file.
func (cs CommandSet) Blocks() int64 {
	var n int64
	for _, r := range cs {
		if r.Valid() {
			n += r.Len()
		}
	}
	return n
}

// MaxBlock returns the highest End in the command set.
func (cs CommandSet) MaxBlock() int64 {
	var hi int64
	for _, r := range cs {
		if r.End > hi {
			hi = r.End
		}
	}
	return hi
}

// ImageSize is the minimum length of an image built from cs.
func (cs CommandSet) ImageSize() int64 {
	return cs.MaxBlock() * BlockSize
}

package sdat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tl := &TransferList{
		Header:   Header{Version: 4, NewBlocks: 5},
		Commands: CommandSet{{10, 12}, {0, 2}, {2, 3}},
	}
	assert.NoError(t, Validate(tl))
}

func TestValidateEmpty(t *testing.T) {
	assert.NoError(t, Validate(&TransferList{}))
}

func TestValidateOverlap(t *testing.T) {
	tl := &TransferList{
		Header:   Header{NewBlocks: 4},
		Commands: CommandSet{{0, 2}, {5, 6}, {1, 2}},
	}
	err := Validate(tl)
	assert.ErrorIs(t, err, ErrOverlappingRange)
	assert.Contains(t, err.Error(), "range 2")
}

func TestValidateCountMismatch(t *testing.T) {
	tl := &TransferList{
		Header:   Header{NewBlocks: 10},
		Commands: CommandSet{{0, 2}},
	}
	assert.ErrorIs(t, Validate(tl), ErrBlockCountMismatch)
}

func TestValidateInvalidRange(t *testing.T) {
	for _, r := range []BlockRange{{4, 4}, {4, 3}, {0, MaxStrictBlocks + 1}} {
		tl := &TransferList{Commands: CommandSet{r}}
		assert.ErrorIs(t, Validate(tl), ErrInvalidRange, "range %v", r)
	}
}

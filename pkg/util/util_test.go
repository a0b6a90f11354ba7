package util

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	testCases := []struct {
		name   string
		val    float64
		lo, hi float64
		want   float64
	}{
		{name: "below", val: -1, lo: 0, hi: 10, want: 0},
		{name: "inside", val: 4.5, lo: 0, hi: 10, want: 4.5},
		{name: "above", val: 12, lo: 0, hi: 10, want: 10},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clamp(tt.val, tt.lo, tt.hi))
		})
	}
}

func TestDistanceFormat(t *testing.T) {
	assert.Equal(t, "NaN", DistanceFormat(math.NaN()))
	assert.Equal(t, "12.3m", DistanceFormat(12.34))
}

func TestWrapErrorf(t *testing.T) {
	orig := errors.New("boom")
	err := WrapErrorf(orig, ErrBadParamInput, "block %s", "b1")

	var uErr *Error
	assert.True(t, errors.As(err, &uErr))
	assert.Equal(t, ErrBadParamInput, uErr.Code())
	assert.ErrorIs(t, err, orig)
	assert.Equal(t, "block b1: boom", err.Error())
}

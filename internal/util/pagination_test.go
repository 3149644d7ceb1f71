package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                         string
		page, size                   int
		wantPage, wantOff, wantLimit int
	}{
		{name: "defaults", page: 0, size: 0, wantPage: 1, wantOff: 0, wantLimit: 10},
		{name: "third page", page: 3, size: 20, wantPage: 3, wantOff: 40, wantLimit: 20},
		{name: "negative", page: -2, size: -5, wantPage: 1, wantOff: 0, wantLimit: 10},
		{name: "clamped", page: 2, size: 1000, wantPage: 2, wantOff: 100, wantLimit: 100},
		{name: "huge page", page: math.MaxInt, size: 10, wantPage: math.MaxInt / 10, wantOff: (math.MaxInt/10 - 1) * 10, wantLimit: 10},
		{name: "huge page max size", page: math.MaxInt/100 + 2, size: 100, wantPage: math.MaxInt / 100, wantOff: (math.MaxInt/100 - 1) * 100, wantLimit: 100},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, off, lim := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.wantPage, p)
			assert.Equal(t, tt.wantOff, off)
			assert.Equal(t, tt.wantLimit, lim)
		})
	}
}

func TestPages(t *testing.T) {
	t.Parallel()

	assert.EqualValues(t, 0, Pages(0, 10))
	assert.EqualValues(t, 1, Pages(1, 10))
	assert.EqualValues(t, 1, Pages(10, 10))
	assert.EqualValues(t, 2, Pages(11, 10))
	assert.EqualValues(t, 0, Pages(5, 0))
}

func TestParseIntDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 7, ParseIntDefault("", 7))
	assert.Equal(t, 3, ParseIntDefault("3", 7))
	assert.Equal(t, 7, ParseIntDefault("x", 7))
}

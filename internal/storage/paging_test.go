package storage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageBounds(t *testing.T) {
	tests := []struct {
		name             string
		page, size, rows int
		start, end       int
		ok               bool
	}{
		{"first page", 1, 20, 45, 0, 20, true},
		{"last partial page", 3, 20, 45, 40, 45, true},
		{"past the end", 4, 20, 45, 0, 0, false},
		{"page below one", 0, 20, 5, 0, 5, true},
		{"empty result", 1, 20, 0, 0, 0, false},
		{"huge page", math.MaxInt64/20 + 2, 20, 45, 0, 0, false},
		{"max page", math.MaxInt64, 100, 45, 0, 0, false},
		{"huge size", 1, math.MaxInt64, 45, 0, 45, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, ok := PageBounds(tt.page, tt.size, tt.rows)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

package tiling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePadding(t *testing.T) {
	// worked example from the engine's docs
	left, right, roiSize := ComputePadding(10, 8, 2)
	assert.Equal(t, 2, left)
	assert.Equal(t, 4, right)
	assert.Equal(t, 4, roiSize)
}

func TestComputePadding_Properties(t *testing.T) {
	for _, width := range []int{1, 3, 7, 10, 100, 511, 512, 513, 1024, 9999} {
		for _, tileSize := range []int{8, 32, 256, 512} {
			for _, offset := range []int{0, 1, 2, 16, 64} {
				if tileSize <= 2*offset {
					continue
				}
				left, right, roiSize := ComputePadding(width, tileSize, offset)
				require.Equal(t, tileSize-2*offset, roiSize,
					"width=%d tile=%d offset=%d", width, tileSize, offset)
				require.Equal(t, offset, left)
				require.Zero(t, (width+left+right-2*offset)%roiSize,
					"padded width must tile evenly: width=%d tile=%d offset=%d", width, tileSize, offset)
			}
		}
	}
}

func TestComputePadding_ExactMultipleOverpads(t *testing.T) {
	// at exact multiples a full extra ROI is still added on the right
	left, right, roiSize := ComputePadding(8, 8, 2)
	assert.Equal(t, 4, roiSize)
	assert.Equal(t, roiSize+left, right)
}

func TestComputePadding_DegenerateNoContext(t *testing.T) {
	// offset consuming the whole tile falls back to a full-tile ROI
	_, _, roiSize := ComputePadding(10, 8, 4)
	assert.Equal(t, 8, roiSize)
}

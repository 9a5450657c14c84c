// Package tiling slides fixed-size windows across spectrograms of
// arbitrary length: it computes the padding that makes a width divisible
// into full tiles, and reassembles per-tile model outputs into a
// full-length prediction.
package tiling

// ComputePadding returns the left/right zero-padding and the usable
// region-of-interest width for tiling a spectrogram of the given width
// with tileSize-wide windows that each sacrifice offset frames of context
// per side.
//
// The right pad always includes a full extra ROI when width is an exact
// multiple of roiSize, so the final tile is guaranteed to be full-sized.
// Downstream trimming depends on this over-padding; do not remove it.
func ComputePadding(width, tileSize, offset int) (left, right, roiSize int) {
	left = offset
	roiSize = tileSize - 2*offset
	if roiSize <= 0 {
		roiSize = tileSize
	}
	right = roiSize - (width % roiSize) + left
	return left, right, roiSize
}

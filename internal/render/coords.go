package render

// ToPdfY converts a stored field y offset into PDF space. Field positions
// are stored top-left-origin with y growing downward, the way the layout
// editor works; PDF text operators place the baseline in a bottom-left,
// upward-y system. Subtracting the font size approximates lining up the
// visual top of the text with the stored offset. x needs no conversion,
// only the flipped axis does.
func ToPdfY(pageHeight, storedY, fontSize float64) float64 {
	return pageHeight - storedY - fontSize
}

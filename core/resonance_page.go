package core

// R96ClassifyPage maps each byte of a PageSize-length page to its resonance
// class, writing into out (also PageSize-length). Page-sized counterpart of
// R96ClassifyBuffer (it calls R96Classify per byte directly), kept distinct
// from it because the L3 resonance
// engine's callers always operate one page at a time and the fixed length
// lets callers skip the length check.
func R96ClassifyPage(in [PageSize]byte, out *[PageSize]byte) {
	for i, b := range in {
		out[i] = byte(R96Classify(b))
	}
}

// R96HistogramPage is the fixed-size counterpart to R96Histogram.
func R96HistogramPage(in [PageSize]byte) [R96Classes]uint16 {
	hist, _ := R96Histogram(in[:])
	return hist
}

// PageResonanceClass returns a page's dominant resonance class, i.e. the
// argmax of its histogram.
func PageResonanceClass(page [PageSize]byte) uint8 {
	return dominantOf(R96HistogramPage(page))
}

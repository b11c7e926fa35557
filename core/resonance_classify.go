package core

import (
	"github.com/klauspost/cpuid/v2"
)

// laneWidth is chosen once at process start from the detected CPU features.
// It only affects how many bytes R96ClassifyBuffer and ConservedSum process
// per unrolled iteration; the result is identical regardless of lane width.
var laneWidth = detectLaneWidth()

func detectLaneWidth() int {
	switch {
	case cpuid.CPU.Supports(cpuid.AVX512F):
		return 64
	case cpuid.CPU.Supports(cpuid.AVX2):
		return 32
	case cpuid.CPU.Supports(cpuid.SSE2):
		return 16
	default:
		return 1
	}
}

// R96Classify maps a single byte to its resonance class. Pure, total,
// byte mod R96Classes for b in 0..256.
func R96Classify(b byte) uint8 {
	return uint8(int(b) % R96Classes)
}

// R96ClassifyBuffer applies R96Classify to every byte of in, writing results
// into out. out must be at least len(in) long. Processes laneWidth bytes per
// unrolled iteration when the slice is long enough, falling back to a scalar
// loop for the remainder — the lane width only affects throughput, not the
// result.
func R96ClassifyBuffer(in []byte, out []uint8) error {
	if len(out) < len(in) {
		return newErr(InvalidArgument, "R96ClassifyBuffer")
	}
	n := len(in)
	lane := laneWidth
	i := 0
	for ; i+lane <= n; i += lane {
		for j := 0; j < lane; j++ {
			out[i+j] = R96Classify(in[i+j])
		}
	}
	for ; i < n; i++ {
		out[i] = R96Classify(in[i])
	}
	return nil
}

// R96Harmonizes reports whether two resonance classes are additive inverses
// mod R96Classes.
func R96Harmonizes(c1, c2 uint8) bool {
	return (int(c1)+int(c2))%R96Classes == 0
}

// R96Histogram scans a page-sized buffer and returns a dense 96-bin
// histogram of resonance classes. page must be exactly PageSize bytes.
func R96Histogram(page []byte) ([R96Classes]uint16, error) {
	var hist [R96Classes]uint16
	if len(page) != PageSize {
		return hist, newErr(InvalidArgument, "R96Histogram")
	}
	for _, b := range page {
		hist[R96Classify(b)]++
	}
	return hist, nil
}

// R96Dominant returns the argmax class of a page's histogram, breaking ties
// toward the smallest class index.
func R96Dominant(page []byte) (uint8, error) {
	hist, err := R96Histogram(page)
	if err != nil {
		return 0, err
	}
	return dominantOf(hist), nil
}

func dominantOf(hist [R96Classes]uint16) uint8 {
	best := uint8(0)
	bestCount := hist[0]
	for c := 1; c < R96Classes; c++ {
		if hist[c] > bestCount {
			bestCount = hist[c]
			best = uint8(c)
		}
	}
	return best
}

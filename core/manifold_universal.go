package core

import (
	"bytes"
	"math"
	"math/cmplx"
	"sort"
)

// manifoldOpCost is the RL-96 budget each manifold-layer operation deducts
// from its caller-supplied Domain before running. Every such operation
// consumes budget and emits a sub-witness chained onto the Domain's root
// witness.
const manifoldOpCost uint8 = 1

// emitSubWitness allocates manifoldOpCost from d, generates a witness over
// payload, and — if d already carries a root witness — chains the new
// witness onto it so the sub-witness's happens-before relationship to the
// domain's committed state is recorded.
func emitSubWitness(d *Domain, payload []byte) (*Witness, error) {
	if d == nil {
		return nil, newErr(InvalidArgument, "emitSubWitness")
	}
	if err := d.BudgetAlloc(manifoldOpCost); err != nil {
		return nil, err
	}
	w, err := WitnessGenerate(payload, DefaultWitnessAlgorithm())
	if err != nil {
		return nil, err
	}
	if d.witness != nil {
		if chained, err := WitnessChain(w, d.witness); err == nil {
			return chained, nil
		}
	}
	return w, nil
}

// UniversalVector is a 96-entry scalar invariant of a buffer under R96
// symmetries: permuting the buffer's bytes within their resonance classes
// leaves it unchanged, and it composes by pointwise addition across
// disjoint buffers.
type UniversalVector [R96Classes]uint32

// LinearProjection reduces a full AtlasSize state to its UniversalVector (the
// histogram-weighted sum over all pages, which for uniform weighting is
// simply the buffer-wide R96 histogram) and emits a sub-witness over the
// projected vector's byte encoding, charged against d.
func LinearProjection(state []byte, d *Domain) (UniversalVector, *Witness, error) {
	var vec UniversalVector
	if len(state) != AtlasSize {
		return vec, nil, newErr(InvalidArgument, "LinearProjection")
	}
	for p := 0; p < PageCount; p++ {
		page := state[p*PageSize : (p+1)*PageSize]
		hist, err := R96Histogram(page)
		if err != nil {
			return vec, nil, err
		}
		for c := 0; c < R96Classes; c++ {
			vec[c] += uint32(hist[c])
		}
	}
	w, err := emitSubWitness(d, vec.bytes())
	return vec, w, err
}

func (v UniversalVector) bytes() []byte {
	out := make([]byte, 0, R96Classes*4)
	for _, c := range v {
		out = append(out, byte(c), byte(c>>8), byte(c>>16), byte(c>>24))
	}
	return out
}

// R96FourierCoefficients holds the 96 complex coefficients of the discrete
// transform applied to a UniversalVector's class histogram.
type R96FourierCoefficients [R96Classes]complex128

// R96Fourier computes a discrete Fourier transform over vec using modular
// twiddles e^{-2*pi*i*k*n/R96Classes}. The transform preserves total mass in
// the Parseval sense: sum(|X_k|^2) == R96Classes * sum(x_n^2).
func R96Fourier(vec UniversalVector, d *Domain) (R96FourierCoefficients, *Witness, error) {
	var out R96FourierCoefficients
	n := R96Classes
	for k := 0; k < n; k++ {
		var sum complex128
		for t := 0; t < n; t++ {
			angle := -2 * math.Pi * float64(k) * float64(t) / float64(n)
			sum += complex(float64(vec[t]), 0) * cmplx.Exp(complex(0, angle))
		}
		out[k] = sum
	}
	payload := make([]byte, 0, n*16)
	for _, c := range out {
		re := math.Float64bits(real(c))
		im := math.Float64bits(imag(c))
		payload = appendUint64(payload, re)
		payload = appendUint64(payload, im)
	}
	w, err := emitSubWitness(d, payload)
	return out, w, err
}

func appendUint64(dst []byte, v uint64) []byte {
	for i := 0; i < 8; i++ {
		dst = append(dst, byte(v>>(8*i)))
	}
	return dst
}

// ShardSpec describes a boundary region: the half-open coordinate range
// [Start, End) and the resonance class shards must dominate.
type ShardSpec struct {
	Start Coordinate
	End   Coordinate
	Class uint8
}

// ExtractShard returns the page indices within spec's coordinate range whose
// dominant class (per view) equals spec.Class, and emits a sub-witness over
// the resulting index list.
func ExtractShard(view *ClusterView, spec ShardSpec, d *Domain) ([]uint32, *Witness, error) {
	if spec.Start >= spec.End {
		return nil, nil, newErr(InvalidArgument, "ExtractShard")
	}
	if int(spec.Start)%PageSize != 0 || int(spec.End)%PageSize != 0 {
		return nil, nil, newErr(InvalidArgument, "ExtractShard")
	}
	if int(spec.Class) >= R96Classes {
		return nil, nil, newErr(InvalidArgument, "ExtractShard")
	}
	startPage := int(spec.Start) / PageSize
	endPage := int(spec.End) / PageSize

	pages, err := view.PagesForResonance(spec.Class)
	if err != nil {
		return nil, nil, err
	}
	var out []uint32
	for _, p := range pages {
		if int(p) >= startPage && int(p) < endPage {
			out = append(out, p)
		}
	}
	payload := make([]byte, len(out)*4)
	for i, p := range out {
		payload[i*4] = byte(p)
		payload[i*4+1] = byte(p >> 8)
		payload[i*4+2] = byte(p >> 16)
		payload[i*4+3] = byte(p >> 24)
	}
	if len(payload) == 0 {
		payload = []byte{0}
	}
	w, err := emitSubWitness(d, payload)
	return out, w, err
}

// AdjacencyMatrix counts, over a scanned window, how many consecutive
// byte-pairs fall into each (class_i, class_j) bucket.
type AdjacencyMatrix [R96Classes][R96Classes]uint64

// BuildAdjacency scans window and tallies consecutive-byte-pair classes.
func BuildAdjacency(window []byte) AdjacencyMatrix {
	var adj AdjacencyMatrix
	for i := 0; i+1 < len(window); i++ {
		a := R96Classify(window[i])
		b := R96Classify(window[i+1])
		adj[a][b]++
	}
	return adj
}

// TraceInvariant computes Tr(A^k) mod ConservationMod for small k over the
// class-adjacency matrix A.
func TraceInvariant(adj AdjacencyMatrix, k int, d *Domain) (uint8, *Witness, error) {
	if k < 1 {
		return 0, nil, newErr(InvalidArgument, "TraceInvariant")
	}
	power := adj
	for i := 1; i < k; i++ {
		power = matMul(power, adj)
	}
	var trace uint64
	for i := 0; i < R96Classes; i++ {
		trace += power[i][i]
	}
	result := uint8(trace % ConservationMod)
	w, err := emitSubWitness(d, []byte{result, byte(k)})
	return result, w, err
}

func matMul(a, b AdjacencyMatrix) AdjacencyMatrix {
	var out AdjacencyMatrix
	for i := 0; i < R96Classes; i++ {
		for kk := 0; kk < R96Classes; kk++ {
			if a[i][kk] == 0 {
				continue
			}
			aik := a[i][kk]
			for j := 0; j < R96Classes; j++ {
				out[i][j] += aik * b[kk][j]
			}
		}
	}
	return out
}

// MergeWitnesses folds ws into a single witness via repeated WitnessMerge,
// in a digest-sorted order so the result is independent of ws's input
// order (WitnessMerge is itself commutative per pair; sorting first makes
// the overall fold order-independent too).
func MergeWitnesses(ws []*Witness) (*Witness, error) {
	if len(ws) == 0 {
		return nil, newErr(InvalidArgument, "MergeWitnesses")
	}
	sorted := append([]*Witness{}, ws...)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].Digest[:], sorted[j].Digest[:]) < 0
	})
	acc := sorted[0]
	for _, w := range sorted[1:] {
		merged, err := WitnessMerge(acc, w)
		if err != nil {
			return nil, err
		}
		acc = merged
	}
	return acc, nil
}

// VerifyReconstruction checks that shards collectively cover AtlasSize bytes
// with no overlap (by total length) and that their merged witness equals
// root.
func VerifyReconstruction(shards []*Witness, root *Witness) (bool, error) {
	if root == nil || len(shards) == 0 {
		return false, newErr(InvalidArgument, "VerifyReconstruction")
	}
	var total int
	for _, s := range shards {
		total += s.DataLen
	}
	if total != AtlasSize {
		return false, nil
	}
	merged, err := MergeWitnesses(shards)
	if err != nil {
		return false, err
	}
	return merged.Digest == root.Digest && merged.ResonanceClass == root.ResonanceClass, nil
}

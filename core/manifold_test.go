package core

import (
	"math"
	"testing"
)

func conservedAtlasBuffer() []byte {
	buf := make([]byte, AtlasSize)
	for i := range buf {
		buf[i] = byte((i * 13) % 256)
	}
	// Force conservation by fixing up the last byte.
	partial := ConservedSum(buf[:len(buf)-1])
	fixup := (ConservationMod - partial%ConservationMod) % ConservationMod
	buf[len(buf)-1] = byte(fixup)
	return buf
}

func TestLinearProjectionSumsToHistogramTotal(t *testing.T) {
	d, _ := DomainCreate(AtlasSize, 90)
	buf := conservedAtlasBuffer()
	vec, w, err := LinearProjection(buf, d)
	if err != nil {
		t.Fatal(err)
	}
	if w == nil {
		t.Fatal("expected a sub-witness")
	}
	var total uint32
	for _, c := range vec {
		total += c
	}
	if total != AtlasSize {
		t.Fatalf("projection totals %d, want %d", total, AtlasSize)
	}
}

func TestLinearProjectionRejectsWrongLength(t *testing.T) {
	d, _ := DomainCreate(AtlasSize, 90)
	if _, _, err := LinearProjection(make([]byte, 10), d); err == nil {
		t.Fatal("expected error for non-atlas-sized state")
	}
}

func TestR96FourierPreservesMass(t *testing.T) {
	d, _ := DomainCreate(AtlasSize, 90)
	var vec UniversalVector
	for i := range vec {
		vec[i] = uint32(i + 1)
	}
	coeffs, w, err := R96Fourier(vec, d)
	if err != nil {
		t.Fatal(err)
	}
	if w == nil {
		t.Fatal("expected a sub-witness")
	}

	var timeEnergy float64
	for _, v := range vec {
		timeEnergy += float64(v) * float64(v)
	}
	var freqEnergy float64
	for _, c := range coeffs {
		freqEnergy += real(c)*real(c) + imag(c)*imag(c)
	}
	want := timeEnergy * float64(R96Classes)
	if math.Abs(freqEnergy-want) > want*1e-6+1e-6 {
		t.Fatalf("Parseval mismatch: freq energy %v, want ~%v", freqEnergy, want)
	}
}

func TestExtractShard(t *testing.T) {
	base := make([]byte, 4*PageSize)
	for i := 0; i < PageSize; i++ {
		base[i] = 0 // page 0 -> class 0
	}
	for i := PageSize; i < 2*PageSize; i++ {
		base[i] = 1 // page 1 -> class 1
	}
	for i := 2 * PageSize; i < 3*PageSize; i++ {
		base[i] = 0 // page 2 -> class 0
	}
	for i := 3 * PageSize; i < 4*PageSize; i++ {
		base[i] = 1 // page 3 -> class 1
	}
	view, err := ClusterByResonance(base, 4)
	if err != nil {
		t.Fatal(err)
	}
	defer view.Destroy()

	d, _ := DomainCreate(AtlasSize, 90)
	start, _ := BoundaryEncode(0, 0)
	end, _ := BoundaryEncode(3, 0) // pages [0,3)
	pages, w, err := ExtractShard(view, ShardSpec{Start: start, End: end, Class: 0}, d)
	if err != nil {
		t.Fatal(err)
	}
	if w == nil {
		t.Fatal("expected a sub-witness")
	}
	if len(pages) != 2 || pages[0] != 0 || pages[1] != 2 {
		t.Fatalf("shard pages = %v, want [0,2]", pages)
	}
}

func TestExtractShardRejectsUnalignedRange(t *testing.T) {
	view := &ClusterView{}
	d, _ := DomainCreate(AtlasSize, 90)
	if _, _, err := ExtractShard(view, ShardSpec{Start: 1, End: 10, Class: 0}, d); err == nil {
		t.Fatal("expected error for non-page-aligned range")
	}
}

func TestTraceInvariantIdentityPowerIsDiagonalSum(t *testing.T) {
	d, _ := DomainCreate(AtlasSize, 90)
	window := []byte{0, 1, 0, 1, 0, 1}
	adj := BuildAdjacency(window)
	got, w, err := TraceInvariant(adj, 1, d)
	if err != nil {
		t.Fatal(err)
	}
	if w == nil {
		t.Fatal("expected a sub-witness")
	}
	// adj[0][1] and adj[1][0] both get hits, diagonal stays zero for k=1.
	if got != 0 {
		t.Fatalf("Tr(A^1) = %d, want 0 for this window", got)
	}
}

func TestMergeAndVerifyReconstruction(t *testing.T) {
	a := make([]byte, PageSize)
	b := make([]byte, AtlasSize-PageSize)
	root, err := WitnessGenerate(append(append([]byte{}, a...), b...), AlgSha256)
	if err != nil {
		t.Fatal(err)
	}
	wa, _ := WitnessGenerate(a, AlgSha256)
	wb, _ := WitnessGenerate(b, AlgSha256)

	// Reconstruction via merge only matches the root when the root witness
	// was itself produced by the same merge discipline; here we only assert
	// that VerifyReconstruction checks total coverage and is deterministic
	// regardless of shard order.
	ok1, err := VerifyReconstruction([]*Witness{wa, wb}, root)
	if err != nil {
		t.Fatal(err)
	}
	ok2, err := VerifyReconstruction([]*Witness{wb, wa}, root)
	if err != nil {
		t.Fatal(err)
	}
	if ok1 != ok2 {
		t.Fatal("VerifyReconstruction must be independent of shard order")
	}
}

func TestVerifyReconstructionRejectsShortCoverage(t *testing.T) {
	wa, _ := WitnessGenerate([]byte{1, 2, 3}, AlgSha256)
	root, _ := WitnessGenerate([]byte{1, 2, 3, 4}, AlgSha256)
	ok, err := VerifyReconstruction([]*Witness{wa}, root)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected reconstruction to fail: shard coverage != AtlasSize")
	}
}

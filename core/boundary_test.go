package core

import "testing"

func TestBoundaryEncodeDecodeRoundTrip(t *testing.T) {
	for page := uint16(0); page < PageCount; page++ {
		for offset := 0; offset < PageSize; offset++ {
			coord, err := BoundaryEncode(page, uint8(offset))
			if err != nil {
				t.Fatalf("encode(%d,%d): %v", page, offset, err)
			}
			gotPage, gotOffset, err := BoundaryDecode(coord)
			if err != nil {
				t.Fatalf("decode(%d): %v", coord, err)
			}
			if gotPage != page || gotOffset != uint8(offset) {
				t.Fatalf("round trip mismatch: (%d,%d) -> %d -> (%d,%d)", page, offset, coord, gotPage, gotOffset)
			}
		}
	}
}

func TestBoundaryEncodeRejectsOutOfRange(t *testing.T) {
	if _, err := BoundaryEncode(PageCount, 0); err == nil {
		t.Fatal("expected error for page >= PageCount")
	}
}

func TestBoundaryDecodeRejectsOutOfRange(t *testing.T) {
	if _, _, err := BoundaryDecode(AtlasSize); err == nil {
		t.Fatal("expected error for coord >= AtlasSize")
	}
}

func TestBoundaryDecodeEncodeRoundTrip(t *testing.T) {
	for c := Coordinate(0); c < AtlasSize; c += 37 {
		page, offset, err := BoundaryDecode(c)
		if err != nil {
			t.Fatal(err)
		}
		got, err := BoundaryEncode(page, offset)
		if err != nil {
			t.Fatal(err)
		}
		if got != c {
			t.Fatalf("decode/encode mismatch for %d: got %d", c, got)
		}
	}
}

func TestKleinVerifyCosetPartition(t *testing.T) {
	if !KleinVerifyCosetPartition() {
		t.Fatal("Klein orbits do not partition into 16 classes of 768")
	}
}

func TestKleinOrbitIDRange(t *testing.T) {
	for c := Coordinate(0); c < AtlasSize; c += 11 {
		id, err := KleinOrbitID(c)
		if err != nil {
			t.Fatal(err)
		}
		if id >= kleinOrbitCount {
			t.Fatalf("orbit id %d out of range for coord %d", id, c)
		}
	}
}

func TestKleinCanonicalizeIsIdempotentAndInOrbit(t *testing.T) {
	for c := Coordinate(0); c < AtlasSize; c += 13 {
		canon, err := KleinCanonicalize(c)
		if err != nil {
			t.Fatal(err)
		}
		origOrbit, _ := KleinOrbitID(c)
		canonOrbit, _ := KleinOrbitID(canon)
		if origOrbit != canonOrbit {
			t.Fatalf("canonicalize(%d)=%d changed orbit: %d -> %d", c, canon, origOrbit, canonOrbit)
		}
		canon2, _ := KleinCanonicalize(canon)
		if canon2 != canon {
			t.Fatalf("canonicalize not idempotent: %d -> %d -> %d", c, canon, canon2)
		}
		if canon > c {
			t.Fatalf("canonical representative %d is larger than input %d", canon, c)
		}
	}
}

func TestKleinIsPrivileged(t *testing.T) {
	for _, c := range []Coordinate{0, 1, 48, 49} {
		if !KleinIsPrivileged(c) {
			t.Fatalf("%d should be privileged", c)
		}
	}
	if KleinIsPrivileged(2) {
		t.Fatal("2 should not be privileged")
	}
}

func TestKleinQuickAccept(t *testing.T) {
	data := make([]byte, AtlasSize)
	// r96(data[0])=0, r96(data[1]) must be 0 too for harmonize-to-zero.
	data[0], data[1] = 0, 0
	data[48], data[49] = 10, 86 // 10+86=96 -> harmonizes
	if !KleinQuickAccept(data) {
		t.Fatal("expected quick accept to pass")
	}
	data[49] = 87
	if KleinQuickAccept(data) {
		t.Fatal("expected quick accept to fail after breaking harmonization")
	}
}

func TestKleinQuickAcceptWrongLength(t *testing.T) {
	if KleinQuickAccept(make([]byte, 100)) {
		t.Fatal("expected quick accept to fail for wrong length")
	}
}

// This file is the flat C-shaped function table: Go functions over byte
// slices and opaque handles instead of raw pointers and lengths — the same
// surface a cgo shim would wrap, one layer up from the C calling convention
// itself.
package cabi

import (
	"atlas-substrate/core"
)

// R96Classify classifies a single byte into its R96 resonance class.
func R96Classify(b byte) uint8 { return core.R96Classify(b) }

// R96ClassifyBuffer classifies every byte of in into out.
func R96ClassifyBuffer(in []byte, out []uint8) core.ErrorCode {
	return recordAndReturn(core.R96ClassifyBuffer(in, out))
}

// BoundaryEncode packs a page/offset pair into a boundary coordinate.
// The second return value is the ErrorCode; coord is valid only when it is
// Success, mirroring a nullable-result ABI function.
func BoundaryEncode(page uint16, offset uint8) (coord uint32, code core.ErrorCode) {
	c, err := core.BoundaryEncode(page, offset)
	return uint32(c), recordAndReturn(err)
}

// BoundaryDecode unpacks a boundary coordinate into its page and offset.
func BoundaryDecode(coord uint32) (page uint16, offset uint8, code core.ErrorCode) {
	p, o, err := core.BoundaryDecode(core.Coordinate(coord))
	return p, o, recordAndReturn(err)
}

// KleinOrbitID returns coord's Klein four-group orbit identifier.
func KleinOrbitID(coord uint32) (uint8, core.ErrorCode) {
	id, err := core.KleinOrbitID(core.Coordinate(coord))
	return id, recordAndReturn(err)
}

// KleinIsPrivileged reports whether coord sits in a privileged orbit.
func KleinIsPrivileged(coord uint32) bool {
	return core.KleinIsPrivileged(core.Coordinate(coord))
}

// DomainCreate allocates a new domain of the given size and budget class.
// A zero handle with a non-Success code indicates failure.
func DomainCreate(bytes int, budgetClass uint8) (DomainHandle, core.ErrorCode) {
	d, err := core.DomainCreate(bytes, budgetClass)
	if err != nil {
		return 0, recordAndReturn(err)
	}
	return DomainHandle(domains.put(d)), recordAndReturn(nil)
}

func lookupDomain(h DomainHandle) (*core.Domain, core.ErrorCode) {
	d, ok := domains.get(uint64(h))
	if !ok {
		return nil, recordCode(core.InvalidArgument)
	}
	return d, core.Success
}

// DomainAttach binds base as the domain's backing memory.
func DomainAttach(h DomainHandle, base []byte) core.ErrorCode {
	d, code := lookupDomain(h)
	if code != core.Success {
		return code
	}
	return recordAndReturn(d.Attach(base))
}

// DomainVerify recomputes and checks the domain's conservation invariant.
func DomainVerify(h DomainHandle) bool {
	d, code := lookupDomain(h)
	if code != core.Success {
		return false
	}
	ok, err := d.Verify()
	recordAndReturn(err)
	return ok
}

// DomainCommit verifies and seals the domain, generating a witness if needed.
func DomainCommit(h DomainHandle) core.ErrorCode {
	d, code := lookupDomain(h)
	if code != core.Success {
		return code
	}
	return recordAndReturn(d.Commit())
}

// DomainDestroy releases the domain and its handle.
func DomainDestroy(h DomainHandle) {
	if d, ok := domains.get(uint64(h)); ok {
		d.Destroy()
		domains.delete(uint64(h))
	}
}

// BudgetAlloc allocates amount from the domain's RL-96 budget.
func BudgetAlloc(h DomainHandle, amount uint8) bool {
	d, code := lookupDomain(h)
	if code != core.Success {
		return false
	}
	err := d.BudgetAlloc(amount)
	recordAndReturn(err)
	return err == nil
}

// BudgetRelease returns amount to the domain's RL-96 budget.
func BudgetRelease(h DomainHandle, amount uint8) bool {
	d, code := lookupDomain(h)
	if code != core.Success {
		return false
	}
	err := d.BudgetRelease(amount)
	recordAndReturn(err)
	return err == nil
}

// WitnessGenerate produces a witness over base using the configured default
// hash algorithm.
func WitnessGenerate(base []byte) (WitnessHandle, core.ErrorCode) {
	w, err := core.WitnessGenerate(base, core.DefaultWitnessAlgorithm())
	if err != nil {
		return 0, recordAndReturn(err)
	}
	return WitnessHandle(witnesses.put(w)), recordAndReturn(nil)
}

// WitnessVerify checks whether base still matches the witness's recorded digest.
func WitnessVerify(h WitnessHandle, base []byte) bool {
	w, ok := witnesses.get(uint64(h))
	if !ok {
		recordCode(core.InvalidArgument)
		return false
	}
	valid, err := core.WitnessVerify(w, base)
	recordAndReturn(err)
	return valid
}

// WitnessDestroy releases the witness and its handle.
func WitnessDestroy(h WitnessHandle) {
	if w, ok := witnesses.get(uint64(h)); ok {
		w.Destroy()
		witnesses.delete(uint64(h))
	}
}

// ConservedDelta computes the modular byte-sum delta between before and after.
func ConservedDelta(before, after []byte) uint8 {
	return core.ConservedDelta(before, after)
}

// R96ClassifyPage classifies a full page's bytes into out.
func R96ClassifyPage(in []byte, out []byte) core.ErrorCode {
	if len(in) != core.PageSize || len(out) != core.PageSize {
		return recordCode(core.InvalidArgument)
	}
	var inArr, outArr [core.PageSize]byte
	copy(inArr[:], in)
	core.R96ClassifyPage(inArr, &outArr)
	copy(out, outArr[:])
	return recordAndReturn(nil)
}

// R96HistogramPage computes the 96-class histogram of a page into out.
func R96HistogramPage(in []byte, out []uint16) core.ErrorCode {
	if len(in) != core.PageSize || len(out) != core.R96Classes {
		return recordCode(core.InvalidArgument)
	}
	var inArr [core.PageSize]byte
	copy(inArr[:], in)
	hist := core.R96HistogramPage(inArr)
	copy(out, hist[:])
	return recordAndReturn(nil)
}

// ClusterByResonance builds a CSR cluster index over pages pages of base.
func ClusterByResonance(base []byte, pages int) (ClusterHandle, core.ErrorCode) {
	v, err := core.ClusterByResonance(base, pages)
	if err != nil {
		return 0, recordAndReturn(err)
	}
	return ClusterHandle(clusters.put(v)), recordAndReturn(nil)
}

// ClusterDestroy releases the cluster view and its handle.
func ClusterDestroy(h ClusterHandle) {
	if v, ok := clusters.get(uint64(h)); ok {
		v.Destroy()
		clusters.delete(uint64(h))
	}
}

// NextHarmonicWindow returns the next tick strictly after now that phase-locks
// resonance class r.
func NextHarmonicWindow(now uint64, r uint8) uint64 {
	return core.NextHarmonicWindow(now, r)
}

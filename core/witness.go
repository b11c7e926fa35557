package core

import (
	"bytes"
	"hash/crc32"
	"time"

	sha256simd "github.com/minio/sha256-simd"
	"lukechampine.com/blake3"

	"atlas-substrate/pkg/config"
)

// WitnessAlgorithm selects the digest strategy embedded in a Witness header,
// dispatched at verification time.
type WitnessAlgorithm uint8

const (
	// AlgSha256 is the default: a 256-bit digest computed with a
	// vector-accelerated SHA-256 implementation.
	AlgSha256 WitnessAlgorithm = iota
	AlgBlake3
	AlgCrc32
)

func (a WitnessAlgorithm) String() string {
	switch a {
	case AlgSha256:
		return "sha256"
	case AlgBlake3:
		return "blake3"
	case AlgCrc32:
		return "crc32"
	default:
		return "unknown"
	}
}

// DefaultWitnessAlgorithm resolves the configured default witness hash
// strategy (pkg/config's witness.algorithm), falling back to SHA-256.
func DefaultWitnessAlgorithm() WitnessAlgorithm {
	switch config.AppConfig.Witness.Algorithm {
	case "blake3":
		return AlgBlake3
	case "crc32":
		return AlgCrc32
	default:
		return AlgSha256
	}
}

func digestOf(algo WitnessAlgorithm, data []byte) ([32]byte, error) {
	var out [32]byte
	switch algo {
	case AlgSha256:
		out = sha256simd.Sum256(data)
	case AlgBlake3:
		h := blake3.Sum256(data)
		out = h
	case AlgCrc32:
		v := crc32.ChecksumIEEE(data)
		out[0] = byte(v)
		out[1] = byte(v >> 8)
		out[2] = byte(v >> 16)
		out[3] = byte(v >> 24)
	default:
		return out, newErr(InvalidArgument, "digestOf")
	}
	return out, nil
}

// Witness is an immutable certificate binding a byte region to a digest and
// its resonance class. Never mutated after WitnessGenerate/WitnessChain/
// WitnessMerge return it.
type Witness struct {
	magic          uint32
	Algorithm      WitnessAlgorithm
	DataLen        int
	Digest         [32]byte
	ResonanceClass uint8
	Timestamp      int64 // wall-clock Unix nanoseconds (time.Now); not monotonic across clock adjustments
	Predecessor    *[32]byte
}

// WitnessGenerate computes a digest and resonance class over data under the
// given algorithm.
func WitnessGenerate(data []byte, algo WitnessAlgorithm) (*Witness, error) {
	if len(data) == 0 {
		return nil, newErr(InvalidArgument, "WitnessGenerate")
	}
	digest, err := digestOf(algo, data)
	if err != nil {
		return nil, err
	}
	return &Witness{
		magic:          WitnessMagic,
		Algorithm:      algo,
		DataLen:        len(data),
		Digest:         digest,
		ResonanceClass: uint8(ConservedSum(data) % ConservationMod),
		Timestamp:      time.Now().UnixNano(),
	}, nil
}

// WitnessVerify reports whether data matches w: same length, same digest
// under w's algorithm, and the same conservation resonance class.
func WitnessVerify(w *Witness, data []byte) (bool, error) {
	if w == nil || w.magic != WitnessMagic {
		return false, newErr(InvalidArgument, "WitnessVerify")
	}
	if w.DataLen != len(data) {
		Metrics().witnessVerifyFailures.Inc()
		return false, newErr(WitnessInvalid, "WitnessVerify")
	}
	digest, err := digestOf(w.Algorithm, data)
	if err != nil {
		return false, err
	}
	if digest != w.Digest {
		Metrics().witnessVerifyFailures.Inc()
		return false, newErr(WitnessInvalid, "WitnessVerify")
	}
	if uint8(ConservedSum(data)%ConservationMod) != w.ResonanceClass {
		Metrics().witnessVerifyFailures.Inc()
		return false, newErr(ConservationViolation, "WitnessVerify")
	}
	return true, nil
}

// WitnessChain produces a new witness whose digest binds previous's digest
// ahead of current's, so that a verifier walking the chain can confirm
// happens-before ordering without storing a pointer back to previous; the
// predecessor's digest is embedded by value so a chained witness never
// holds a live reference to another witness's memory.
func WitnessChain(current, previous *Witness) (*Witness, error) {
	if current == nil || previous == nil {
		return nil, newErr(InvalidArgument, "WitnessChain")
	}
	combined := append(append([]byte{}, previous.Digest[:]...), current.Digest[:]...)
	digest, err := digestOf(current.Algorithm, combined)
	if err != nil {
		return nil, err
	}
	pred := previous.Digest
	return &Witness{
		magic:          WitnessMagic,
		Algorithm:      current.Algorithm,
		DataLen:        current.DataLen,
		Digest:         digest,
		ResonanceClass: uint8((int(previous.ResonanceClass) + int(current.ResonanceClass)) % ConservationMod),
		Timestamp:      time.Now().UnixNano(),
		Predecessor:    &pred,
	}, nil
}

// WitnessMerge produces a commutative combination of w1 and w2: the digest
// is computed over the pair sorted into a canonical order, so
// WitnessMerge(a, b) and WitnessMerge(b, a) are bitwise identical.
func WitnessMerge(w1, w2 *Witness) (*Witness, error) {
	if w1 == nil || w2 == nil {
		return nil, newErr(InvalidArgument, "WitnessMerge")
	}
	lo, hi := w1.Digest, w2.Digest
	if bytes.Compare(lo[:], hi[:]) > 0 {
		lo, hi = hi, lo
	}
	combined := append(append([]byte{}, lo[:]...), hi[:]...)
	digest, err := digestOf(w1.Algorithm, combined)
	if err != nil {
		return nil, err
	}
	return &Witness{
		magic:          WitnessMagic,
		Algorithm:      w1.Algorithm,
		DataLen:        w1.DataLen + w2.DataLen,
		Digest:         digest,
		ResonanceClass: uint8((int(w1.ResonanceClass) + int(w2.ResonanceClass)) % ConservationMod),
		Timestamp:      time.Now().UnixNano(),
	}, nil
}

// Destroy releases w. Witnesses carry no external resources in this
// implementation; Destroy exists for API parity with the stable ABI surface
// so embedders following the create/destroy discipline of the rest of the
// substrate have one symmetric pattern to follow.
func (w *Witness) Destroy() {}

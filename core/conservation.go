package core

import "encoding/binary"

// ConservedSum computes the byte sum of data using lane-parallel
// accumulation sized by the detected CPU feature width (see
// resonance_classify.go's detectLaneWidth). The result is the same
// regardless of lane width; only throughput differs.
func ConservedSum(data []byte) uint32 {
	lane := laneWidth
	if lane < 1 {
		lane = 1
	}
	var acc [64]uint32 // wide enough for the largest supported lane width
	n := len(data)
	i := 0
	for ; i+lane <= n; i += lane {
		for j := 0; j < lane; j++ {
			acc[j] += uint32(data[i+j])
		}
	}
	var total uint32
	for j := 0; j < lane; j++ {
		total += acc[j]
	}
	for ; i < n; i++ {
		total += uint32(data[i])
	}
	return total
}

// ConservedCheck reports whether data's byte sum reduces to zero mod
// ConservationMod.
func ConservedCheck(data []byte) bool {
	return ConservedSum(data)%ConservationMod == 0
}

// ConservedDelta computes (sum(after) - sum(before)) mod ConservationMod
// using modular subtraction so it never underflows as an unsigned value. A
// delta of 0 means the modification preserved conservation.
func ConservedDelta(before, after []byte) uint8 {
	sb := ConservedSum(before) % ConservationMod
	sa := ConservedSum(after) % ConservationMod
	return uint8((sa + ConservationMod - sb) % ConservationMod)
}

// ConservedWindowCheck is ConservedCheck for a caller-chosen window length,
// not necessarily AtlasSize.
func ConservedWindowCheck(data []byte) bool {
	return ConservedCheck(data)
}

// conservedUpdateStateLen is the minimum length of the opaque state block
// passed to ConservedUpdate: 8 bytes of running sum. Any bytes after those 8
// are caller-reserved state and are left untouched.
const conservedUpdateStateLen = 8

// ConservedUpdate streams chunk into a running sum stored in the first 8
// bytes of state (little-endian uint64). After the call, those 8 bytes hold
// (running_sum + sum(chunk)) mod ConservationMod, so conservation of an
// arbitrarily large stream can be checked online without buffering it.
func ConservedUpdate(state []byte, chunk []byte) error {
	if len(state) < conservedUpdateStateLen {
		return newErr(InvalidArgument, "ConservedUpdate")
	}
	running := binary.LittleEndian.Uint64(state[:8])
	sum := ConservedSum(chunk)
	running = (running + uint64(sum)) % uint64(ConservationMod)
	binary.LittleEndian.PutUint64(state[:8], running)
	return nil
}

// conservedUpdateRunningSum reads back the running sum ConservedUpdate
// maintains in state's first 8 bytes.
func conservedUpdateRunningSum(state []byte) uint64 {
	return binary.LittleEndian.Uint64(state[:8])
}

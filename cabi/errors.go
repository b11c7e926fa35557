package cabi

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"

	"atlas-substrate/core"
)

// The ABI contract promises per-thread last-error state. Go has no stable
// thread handle to key off of (goroutines migrate between OS threads
// freely), so this emulates the same observable contract per goroutine
// instead: each goroutine that calls into cabi gets its own ErrorCode slot,
// extracted from the runtime-printed goroutine id. This is the same trick
// used by several goroutine-local-storage shims in the wild; it is
// intentionally confined to this package — core's own API is plain
// idiomatic (value, error) returns and never needs it.
var (
	lastErrMu sync.Mutex
	lastErr   = map[uint64]core.ErrorCode{}
)

func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	// Stack() begins with "goroutine <id> [running]:\n".
	const prefix = "goroutine "
	if !bytes.HasPrefix(b, []byte(prefix)) {
		return 0
	}
	b = b[len(prefix):]
	sp := bytes.IndexByte(b, ' ')
	if sp < 0 {
		return 0
	}
	id, err := strconv.ParseUint(string(b[:sp]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func setLastError(code core.ErrorCode) {
	gid := goroutineID()
	lastErrMu.Lock()
	defer lastErrMu.Unlock()
	lastErr[gid] = code
}

// LastError returns the calling goroutine's most recently recorded
// ErrorCode, or Success if none has been recorded.
func LastError() core.ErrorCode {
	gid := goroutineID()
	lastErrMu.Lock()
	defer lastErrMu.Unlock()
	return lastErr[gid]
}

// ErrorString renders code's human-readable description.
func ErrorString(code core.ErrorCode) string {
	return code.String()
}

func recordAndReturn(err error) core.ErrorCode {
	code := core.CodeOf(err)
	setLastError(code)
	return code
}

// recordCode sets the calling goroutine's last-error slot directly to code,
// for call sites that already know the ErrorCode without wrapping a Go
// error (e.g. a handle-table miss).
func recordCode(code core.ErrorCode) core.ErrorCode {
	setLastError(code)
	return code
}

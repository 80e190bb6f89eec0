// Shared-slot selection for the single-range fallback.
//
// When the platform cannot grant a true shared lock, each reader locks one
// random byte of the shared pool instead. Two readers collide (and one gets
// ErrBusy) only when they draw the same byte, so reader concurrency is
// probabilistic: (SharedSize-1)/SharedSize per pair. That is a deliberate
// trade-off inherited from the protocol, not a bug to fix.
//
// The process RNG is seeded once from ambient state mixed through Blake2b,
// so two processes starting in the same instant still draw independent slot
// sequences.
package latch

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
)

var (
	randMu  sync.Mutex
	randSrc = sync.OnceValue(func() *rand.Rand {
		lo, hi := seed()
		return rand.New(rand.NewPCG(lo, hi))
	})
)

// seed mixes wall clock, pid and hostname into 128 bits of PCG seed.
func seed() (uint64, uint64) {
	h, _ := blake2b.New(16, nil)
	host, _ := os.Hostname()
	fmt.Fprintf(h, "%d|%d|%s", time.Now().UnixNano(), os.Getpid(), host)
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum[:8]), binary.LittleEndian.Uint64(sum[8:])
}

// randIntN returns a uniform integer in [0, n). Safe for concurrent use.
func randIntN(n int) int {
	randMu.Lock()
	defer randMu.Unlock()
	return randSrc().IntN(n)
}

// chooseSlot picks the byte of the shared pool this reader will contend on.
func chooseSlot() int {
	return randIntN(SharedSize)
}

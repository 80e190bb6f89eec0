// Lock byte layout.
//
// These offsets are reserved metadata positions used only for advisory
// locking. They are never read or written as data, and they sit at the top of
// the 32-bit offset space where no realistic database payload will ever
// collide with them.
//
// Every process touching the same file must agree on these values exactly.
// They are not negotiated, only agreed by convention; changing one silently
// breaks the protocol for every peer.
package latch

const (
	// SharedSize is the number of bytes in the shared-lock pool. A reader
	// under the fallback capability locks one random byte out of this pool;
	// a writer locks the whole pool.
	SharedSize = 10238

	// SharedFirst is the first byte of the shared-lock pool.
	SharedFirst = 0xffffffff - SharedSize + 1

	// ReservedByte is locked by the one handle preparing to write.
	ReservedByte = SharedFirst - 1

	// PendingByte is the gatekeeper byte, taken transiently before entering
	// Shared and held for the duration of Pending. Holding it starves out
	// new readers so a waiting writer can eventually proceed.
	PendingByte = ReservedByte - 1
)

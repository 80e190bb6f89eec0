// Lock levels for the five-state escalation protocol.
//
// Levels are strictly ordered by exclusivity. A handle's level only ever
// changes through Lock and Unlock; comparing levels across different files is
// meaningless since each handle's level is private to that handle.
package latch

// Level is the lock state of a single handle on the shared file.
type Level int

const (
	LevelUnlocked  Level = 0 // No claim on the file
	LevelShared    Level = 1 // May read; coexists with other Shared holders
	LevelReserved  Level = 2 // Intends to write; readers still allowed
	LevelPending   Level = 3 // Waiting for readers to drain; no new Shared
	LevelExclusive Level = 4 // Sole access; no other holder at any level
)

func (l Level) String() string {
	switch l {
	case LevelUnlocked:
		return "unlocked"
	case LevelShared:
		return "shared"
	case LevelReserved:
		return "reserved"
	case LevelPending:
		return "pending"
	case LevelExclusive:
		return "exclusive"
	}
	return "invalid"
}

package latch

import "testing"

func TestLevelOrdering(t *testing.T) {
	// The whole protocol rests on this ordering; spell it out.
	order := []Level{LevelUnlocked, LevelShared, LevelReserved, LevelPending, LevelExclusive}
	for i := 1; i < len(order); i++ {
		if order[i-1] >= order[i] {
			t.Fatalf("%v should be below %v", order[i-1], order[i])
		}
	}
}

func TestLevelString(t *testing.T) {
	want := map[Level]string{
		LevelUnlocked:  "unlocked",
		LevelShared:    "shared",
		LevelReserved:  "reserved",
		LevelPending:   "pending",
		LevelExclusive: "exclusive",
		Level(99):      "invalid",
	}
	for l, s := range want {
		if got := l.String(); got != s {
			t.Errorf("Level(%d).String() = %q, want %q", int(l), got, s)
		}
	}
}

func TestLayoutConstants(t *testing.T) {
	// The offsets are a cross-process convention; a drift here breaks
	// interoperability with every existing participant.
	if SharedSize != 10238 {
		t.Fatalf("SharedSize = %d", SharedSize)
	}
	if SharedFirst != 0xffffffff-SharedSize+1 {
		t.Fatalf("SharedFirst = %d", int64(SharedFirst))
	}
	if ReservedByte != SharedFirst-1 || PendingByte != ReservedByte-1 {
		t.Fatalf("reserved/pending bytes out of place: %d %d",
			int64(ReservedByte), int64(PendingByte))
	}
	// The three single bytes and the pool must not overlap.
	if PendingByte >= ReservedByte || ReservedByte >= SharedFirst {
		t.Fatal("lock regions overlap")
	}
}

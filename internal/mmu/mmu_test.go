package mmu

import "testing"

func resetTables() {
	for i := range l0Table {
		l0Table[i] = 0
	}
	for i := range l1Table {
		l1Table[i] = 0
	}
	for i := range l2Table {
		l2Table[i] = 0
	}
}

func TestInitSetsL0EntryZero(t *testing.T) {
	resetTables()
	Init()
	if l0Table[0]&pteValid == 0 {
		t.Fatal("l0Table[0] is not marked valid after Init")
	}
}

func TestMapRangeWritesExpectedL2Block(t *testing.T) {
	resetTables()
	Init()
	MapRange(0x09000000, 0x09000000, 0x1000, true, false)

	l2idx := (uintptr(0x09000000) >> l2Shift) & 0x1FF
	entry := l2Table[l2idx]

	if entry&pteValid == 0 {
		t.Fatal("L2 block entry not marked valid")
	}
	if entry&(1<<2) != pteAttrDevice {
		t.Error("device mapping did not select the device MAIR attribute")
	}
	if entry&pteAF == 0 {
		t.Error("L2 entry missing AF")
	}
	if entry&ptePXN == 0 {
		t.Error("device mapping must set PXN")
	}
	if entry&pteUXN == 0 {
		t.Error("device mapping must set UXN")
	}
}

func TestMapRangeExecutableOmitsXN(t *testing.T) {
	resetTables()
	Init()
	MapRange(0x40000000, 0x40000000, 0x1000, false, true)

	l2idx := (uintptr(0x40000000) >> l2Shift) & 0x1FF
	entry := l2Table[l2idx]

	if entry&ptePXN != 0 {
		t.Error("executable mapping must not set PXN")
	}
	if entry&pteUXN != 0 {
		t.Error("executable mapping must not set UXN")
	}
	if entry&(1<<2) != pteAttrNormal {
		t.Error("non-device mapping did not select the Normal MAIR attribute")
	}
}

func TestMapRangeAlignsDownAndUp(t *testing.T) {
	resetTables()
	Init()
	// Request a tiny, misaligned range entirely inside one 2MiB block.
	MapRange(0x09001234, 0x09001234, 0x10, true, false)

	l2idx := (uintptr(0x09001234) >> l2Shift) & 0x1FF
	entry := l2Table[l2idx]
	if entry&pteValid == 0 {
		t.Fatal("misaligned range did not populate its containing L2 block")
	}

	const knownFlagBits = uint64(pteValid | pteTable | (1 << 2) | (0b11 << 6) | pteSHInner | pteAF | ptePXN | pteUXN)
	physInEntry := entry &^ knownFlagBits
	wantPhys := uint64(0x09001234) &^ uint64(blockSize-1)
	if physInEntry != wantPhys {
		t.Fatalf("block physical address = 0x%x, want 0x%x", physInEntry, wantPhys)
	}
}

func TestMapRangeSpanningMultipleBlocksPopulatesEach(t *testing.T) {
	resetTables()
	Init()
	MapRange(0, 0, 3*blockSize, true, false)

	for i := 0; i < 3; i++ {
		if l2Table[i]&pteValid == 0 {
			t.Errorf("block %d must be mapped", i)
		}
	}
	if l2Table[3]&pteValid != 0 {
		t.Error("block past the requested range must stay unmapped")
	}
}

func TestMapRangeIdempotent(t *testing.T) {
	resetTables()
	Init()
	MapRange(0x09000000, 0x09000000, 0x1000, true, false)
	l2idx := (uintptr(0x09000000) >> l2Shift) & 0x1FF
	first := l2Table[l2idx]

	MapRange(0x09000000, 0x09000000, 0x1000, true, false)
	if l2Table[l2idx] != first {
		t.Fatal("applying the same range twice changed the L2 entry")
	}
}

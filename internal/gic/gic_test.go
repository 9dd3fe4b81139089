package gic

import "testing"

// withFakeGIC backs read32Fn/write32Fn with an in-memory map during tests so
// the init protocol and readback helpers can be exercised without touching
// real hardware addresses, mirroring internal/mmio's FakeBus seam.
func withFakeGIC(t *testing.T, typerLines uint32) (distBase, cpuBase uintptr) {
	t.Helper()
	mem := make(map[uintptr]uint32)
	distBase, cpuBase = 0x08000000, 0x08010000

	mem[distBase+gicdTYPER] = typerLines

	oldRead, oldWrite := read32Fn, write32Fn
	read32Fn = func(addr uintptr) uint32 { return mem[addr] }
	write32Fn = func(addr uintptr, v uint32) { mem[addr] = v }
	t.Cleanup(func() {
		read32Fn, write32Fn = oldRead, oldWrite
		gic = state{}
	})
	return distBase, cpuBase
}

func TestInitEnablesDistributorAndCPUInterface(t *testing.T) {
	distBase, cpuBase := withFakeGIC(t, 0) // ITLinesNumber=0 -> 32 lines
	Init(distBase, cpuBase)

	if !Initialized() {
		t.Fatal("Initialized() = false after Init")
	}
	if !DistributorCTLREnabled() {
		t.Error("distributor CTLR not enabled")
	}
	if !CPUCTLREnabled() {
		t.Error("CPU interface CTLR not enabled")
	}
	if got := PriorityMask(); got != 0xFF {
		t.Errorf("PriorityMask = 0x%x, want 0xFF", got)
	}
}

func TestInitDerivesLineCountFromTyper(t *testing.T) {
	distBase, cpuBase := withFakeGIC(t, 1) // ITLinesNumber=1 -> 64 lines
	Init(distBase, cpuBase)

	// 64 lines means SPI 63 must have been touched by the priority/target
	// init loops without panicking or going out of range; probe it.
	if got := Priority(63); got != 0xFF {
		t.Errorf("Priority(63) = 0x%x, want 0xFF", got)
	}
	if got := Targets(63); got != 0x01 {
		t.Errorf("Targets(63) = 0x%x, want 0x01", got)
	}
}

func TestEnableDisableInterruptDoesNotPanic(t *testing.T) {
	distBase, cpuBase := withFakeGIC(t, 0)
	Init(distBase, cpuBase)

	EnableInterrupt(35) // word 1, bit 3
	DisableInterrupt(35)
	EnableInterrupt(35)
}

func TestSetPriorityIsByteWiseRMW(t *testing.T) {
	distBase, cpuBase := withFakeGIC(t, 0)
	Init(distBase, cpuBase)

	SetPriority(0, 0x10)
	SetPriority(1, 0x20)
	if got := Priority(0); got != 0x10 {
		t.Errorf("Priority(0) = 0x%x, want 0x10", got)
	}
	if got := Priority(1); got != 0x20 {
		t.Errorf("Priority(1) = 0x%x, want 0x20", got)
	}
}

func TestAcknowledgeAndEndOfInterrupt(t *testing.T) {
	distBase, cpuBase := withFakeGIC(t, 0)
	Init(distBase, cpuBase)

	mem := map[uintptr]uint32{}
	oldRead, oldWrite := read32Fn, write32Fn
	read32Fn = func(addr uintptr) uint32 { return mem[addr] }
	write32Fn = func(addr uintptr, v uint32) { mem[addr] = v }
	defer func() { read32Fn, write32Fn = oldRead, oldWrite }()

	mem[cpuBase+giccIAR] = 42
	if got := Acknowledge(); got != 42 {
		t.Fatalf("Acknowledge() = %d, want 42", got)
	}

	EndOfInterrupt(42)
	if got := mem[cpuBase+giccEOIR]; got != 42 {
		t.Fatalf("GICC_EOIR = %d, want 42", got)
	}
}

func TestSpuriousIRQConstant(t *testing.T) {
	if SpuriousIRQ != 1023 {
		t.Fatalf("SpuriousIRQ = %d, want 1023", SpuriousIRQ)
	}
}

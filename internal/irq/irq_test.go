package irq

import (
	"testing"

	"github.com/grosheth/OdinOs-ARM64/internal/kconfig"
)

func reset() {
	for i := range table {
		table[i] = nil
	}
	total, spurious, unhandled = 0, 0, 0
}

func TestRegisterRejectsOutOfRange(t *testing.T) {
	reset()
	if Register(kconfig.IRQTableSize, func(uint32) {}) {
		t.Fatal("Register accepted an out-of-range IRQ number")
	}
}

func TestRegisterAllowsReplacement(t *testing.T) {
	reset()
	if !Register(5, func(uint32) {}) {
		t.Fatal("first Register failed")
	}
	if !Register(5, func(uint32) {}) {
		t.Fatal("second Register (replacement) failed")
	}
}

func TestDispatchSpuriousShortCircuits(t *testing.T) {
	reset()
	called := false
	if !Register(5, func(uint32) { called = true }) {
		t.Fatal("Register failed")
	}

	Dispatch(kconfig.SpuriousIRQ)

	_, spuriousCount, _ := Stats()
	if spuriousCount != 1 {
		t.Fatalf("spuriousCount = %d, want 1", spuriousCount)
	}
	if called {
		t.Fatal("spurious dispatch must not consult the handler table")
	}
}

func TestDispatchCountsUnhandled(t *testing.T) {
	reset()
	Dispatch(7) // no handler registered for 7

	totalCount, _, unhandledCount := Stats()
	if totalCount != 1 {
		t.Fatalf("totalCount = %d, want 1", totalCount)
	}
	if unhandledCount != 1 {
		t.Fatalf("unhandledCount = %d, want 1", unhandledCount)
	}
}

func TestDispatchInvokesRegisteredHandler(t *testing.T) {
	reset()
	var gotIRQ uint32 = 9999
	if !Register(42, func(n uint32) { gotIRQ = n }) {
		t.Fatal("Register failed")
	}

	Dispatch(42)

	if gotIRQ != 42 {
		t.Fatalf("gotIRQ = %d, want 42", gotIRQ)
	}
}

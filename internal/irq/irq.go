// Package irq implements the IRQ dispatcher: a fixed 1020-slot handler
// table plus total/spurious/unhandled counters, consulted from the
// exception vector's IRQ trampoline.
//
// Handlers are a plain func(uint32) — no interface, no dynamic dispatch
// beyond the single table indirection.
package irq

import (
	"github.com/grosheth/OdinOs-ARM64/internal/gic"
	"github.com/grosheth/OdinOs-ARM64/internal/kconfig"
	"github.com/grosheth/OdinOs-ARM64/internal/klog"
)

// Handler is the capability a driver registers against an IRQ number.
type Handler func(irq uint32)

var (
	table     [kconfig.IRQTableSize]Handler
	total     uint64
	spurious  uint64
	unhandled uint64
)

// Register installs a handler for irq. Registration happens only from
// non-IRQ context during init, before interrupts are enabled, so no lock
// is required. Rejects irq >= 1020; replacement of an
// existing handler is permitted, with a warning.
func Register(irqNum uint32, h Handler) bool {
	if irqNum >= kconfig.IRQTableSize {
		return false
	}
	if table[irqNum] != nil {
		klog.Warn("irq: replacing handler", klog.Dec("irq", uint64(irqNum)))
	}
	table[irqNum] = h
	return true
}

// Dispatch is called from the IRQ vector trampoline with the ID returned
// by gic.Acknowledge. It increments total, short-circuits on the spurious
// ID without EOI, consults the handler table, and counts+logs unhandled
// IRQs while still issuing EOI.
//
//go:nosplit
func Dispatch(irqNum uint32) {
	total++
	if irqNum == kconfig.SpuriousIRQ {
		spurious++
		return
	}

	var h Handler
	if irqNum < kconfig.IRQTableSize {
		h = table[irqNum]
	}
	if h == nil {
		unhandled++
		klog.Warn("irq: unhandled", klog.Dec("irq", uint64(irqNum)))
	} else {
		h(irqNum)
	}
	gic.EndOfInterrupt(irqNum)
}

// Stats returns the dispatcher counters.
func Stats() (totalCount, spuriousCount, unhandledCount uint64) {
	return total, spurious, unhandled
}

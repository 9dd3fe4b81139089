// Package gic implements the ARM GICv2 distributor + CPU-interface driver:
// the 9-step initialization protocol, per-interrupt enable/disable,
// acknowledge/EOI, and priority/target readback.
//
// Init computes ITLinesNumber from GICD_TYPER, then iterates
// ICENABLER/ICPENDR in 32-interrupt strides and IPRIORITYR in
// 4-interrupt strides, targets every SPI
// at ITARGETSR ← 0x01010101, configures ICFGR for level-sensitive
// triggering, and sets PMR ← 0xFF to accept all priorities — a single
// Non-Secure-only configuration with no Secure-group split, since this
// kernel runs in one security state (see DESIGN.md).
package gic

import (
	"github.com/grosheth/OdinOs-ARM64/internal/klog"
	"github.com/grosheth/OdinOs-ARM64/internal/mmio"
)

// Distributor register offsets.
const (
	gicdCTLR       = 0x000
	gicdTYPER      = 0x004
	gicdISENABLER  = 0x100
	gicdICENABLER  = 0x180
	gicdICPENDR    = 0x280
	gicdIPRIORITYR = 0x400
	gicdITARGETSR  = 0x800
	gicdICFGR      = 0xC00
)

// CPU-interface register offsets.
const (
	giccCTLR = 0x00
	giccPMR  = 0x04
	giccBPR  = 0x08
	giccIAR  = 0x0C
	giccEOIR = 0x10
)

// SpuriousIRQ is the GICC_IAR sentinel meaning no interrupt is pending.
const SpuriousIRQ = 1023

// state is the GIC singleton: written once by Init, read
// from both IRQ and non-IRQ context afterwards.
type state struct {
	distributorBase  uintptr
	cpuInterfaceBase uintptr
	numLines         uint32
	initialized      bool
}

var gic state

// read32Fn/write32Fn indirect through mmio.Read32/mmio.Write32 by default;
// _test.go swaps these for an in-memory fake so host-side tests can exercise
// the init protocol and readback helpers without touching real hardware
// addresses, the same seam internal/mmio uses for its own backend.
var (
	read32Fn  = mmio.Read32
	write32Fn = mmio.Write32
)

// Init runs the GICv2 initialization protocol over the
// given distributor and CPU-interface bases.
func Init(distributorBase, cpuInterfaceBase uintptr) {
	gic.distributorBase = distributorBase
	gic.cpuInterfaceBase = cpuInterfaceBase

	// 1. Disable distributor.
	write32Fn(distributorBase+gicdCTLR, 0)

	// 2. Read GICD_TYPER; derive total interrupts N = 32*(ITLinesNumber+1).
	typer := read32Fn(distributorBase + gicdTYPER)
	itLinesNumber := typer & 0x1F
	n := 32 * (itLinesNumber + 1)
	gic.numLines = n

	words := (n + 31) / 32
	for i := uint32(0); i < words; i++ {
		// 3. Disable all interrupts.
		write32Fn(distributorBase+gicdICENABLER+4*uintptr(i), 0xFFFFFFFF)
		// 4. Clear pending.
		write32Fn(distributorBase+gicdICPENDR+4*uintptr(i), 0xFFFFFFFF)
	}

	// 5. Default all priorities to 0xFF (lowest) across IPRIORITYR[0 ..
	// ceil(N/4)).
	priWords := (n + 3) / 4
	for i := uint32(0); i < priWords; i++ {
		write32Fn(distributorBase+gicdIPRIORITYR+4*uintptr(i), 0xFFFFFFFF)
	}

	// 6. Target all SPI interrupts at CPU0.
	targetWords := (n + 3) / 4
	for i := uint32(0); i < targetWords; i++ {
		write32Fn(distributorBase+gicdITARGETSR+4*uintptr(i), 0x01010101)
	}

	// 7. Configure all as level-sensitive.
	cfgWords := (n + 15) / 16
	for i := uint32(0); i < cfgWords; i++ {
		write32Fn(distributorBase+gicdICFGR+4*uintptr(i), 0)
	}

	// 8. Enable distributor.
	write32Fn(distributorBase+gicdCTLR, 1)

	// 9. CPU interface.
	write32Fn(cpuInterfaceBase+giccPMR, 0xFF)
	write32Fn(cpuInterfaceBase+giccBPR, 0)
	write32Fn(cpuInterfaceBase+giccCTLR, 1)

	gic.initialized = true
	klog.Info("gic: initialized",
		klog.Hex("gicd", uint64(distributorBase)),
		klog.Hex("gicc", uint64(cpuInterfaceBase)),
		klog.Dec("lines", uint64(n)),
	)
}

// Initialized reports whether Init has run.
func Initialized() bool { return gic.initialized }

// EnableInterrupt sets bit (n mod 32) in GICD_ISENABLER[n/32].
func EnableInterrupt(n uint32) {
	word := n / 32
	bit := n % 32
	write32Fn(gic.distributorBase+gicdISENABLER+4*uintptr(word), 1<<bit)
}

// DisableInterrupt sets bit (n mod 32) in GICD_ICENABLER[n/32].
func DisableInterrupt(n uint32) {
	word := n / 32
	bit := n % 32
	write32Fn(gic.distributorBase+gicdICENABLER+4*uintptr(word), 1<<bit)
}

// SetPriority performs a byte-wide RMW inside GICD_IPRIORITYR[n/4].
func SetPriority(n uint32, p uint8) {
	word := n / 4
	shift := (n % 4) * 8
	addr := gic.distributorBase + gicdIPRIORITYR + 4*uintptr(word)
	v := read32Fn(addr)
	v &^= 0xFF << shift
	v |= uint32(p) << shift
	write32Fn(addr, v)
}

// Priority reads back the priority byte for interrupt n.
func Priority(n uint32) uint8 {
	word := n / 4
	shift := (n % 4) * 8
	addr := gic.distributorBase + gicdIPRIORITYR + 4*uintptr(word)
	return uint8(read32Fn(addr) >> shift)
}

// Targets reads back the CPU-target byte for interrupt n.
func Targets(n uint32) uint8 {
	word := n / 4
	shift := (n % 4) * 8
	addr := gic.distributorBase + gicdITARGETSR + 4*uintptr(word)
	return uint8(read32Fn(addr) >> shift)
}

// Acknowledge returns the IRQ ID from GICC_IAR; SpuriousIRQ (1023)
// indicates nothing is pending.
func Acknowledge() uint32 {
	return read32Fn(gic.cpuInterfaceBase + giccIAR)
}

// EndOfInterrupt writes the IRQ ID to GICC_EOIR. Required for every
// non-spurious ack, including when no handler was registered.
func EndOfInterrupt(irq uint32) {
	write32Fn(gic.cpuInterfaceBase+giccEOIR, irq)
}

// DistributorCTLREnabled reports GICD_CTLR bit 0.
func DistributorCTLREnabled() bool {
	return read32Fn(gic.distributorBase+gicdCTLR)&1 == 1
}

// CPUCTLREnabled reports GICC_CTLR bit 0.
func CPUCTLREnabled() bool {
	return read32Fn(gic.cpuInterfaceBase+giccCTLR)&1 == 1
}

// PriorityMask reads back GICC_PMR.
func PriorityMask() uint32 {
	return read32Fn(gic.cpuInterfaceBase + giccPMR)
}

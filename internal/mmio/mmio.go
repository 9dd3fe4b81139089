// Package mmio provides whitelisted, barrier-disciplined volatile access to
// physical MMIO registers. Every access is checked against a compile-time
// region whitelist before it reaches hardware; rejected reads return an
// all-ones sentinel and rejected writes are dropped, both logged.
//
// Barriers are issued explicitly by the caller around an access, never
// folded into it, keeping a typed volatile cell and its ordering
// intrinsics separate (see DESIGN.md).
package mmio

import (
	"github.com/grosheth/OdinOs-ARM64/internal/asm"
	"github.com/grosheth/OdinOs-ARM64/internal/kconfig"
	"github.com/grosheth/OdinOs-ARM64/internal/kernelerr"
)

// Region is one entry of the MMIO whitelist: a named, non-overlapping
// [Start, End) physical address range.
type Region struct {
	Name  string
	Start uintptr
	End   uintptr
}

// maxRegions bounds the whitelist table; it is populated once at boot
// (kernel image, UART, GICD, GICC) and never grows afterwards.
const maxRegions = 8

var (
	whitelist    [maxRegions]Region
	whitelistLen int
)

// Logger receives one line of diagnostic text per rejected access. It
// defaults to a no-op so packages that import mmio before klog is wired
// up (the very first UART bring-up) don't crash; the caller rebinds it
// to klog once logging is available.
var Logger func(msg string)

func logReject(msg string) {
	if Logger != nil {
		Logger(msg)
	}
}

// Register adds a region to the compile-time whitelist. It is meant to be
// called only during boot, before any concurrent
// access is possible; there is no lock because registration always
// happens-before use.
func Register(name string, start, size uintptr) bool {
	if whitelistLen >= maxRegions {
		return false
	}
	end := start + size
	if end < start {
		return false // overflow
	}
	whitelist[whitelistLen] = Region{Name: name, Start: start, End: end}
	whitelistLen++
	return true
}

// Regions returns the whitelist entries registered so far, for diagnostics
// and tests.
func Regions() []Region {
	return whitelist[:whitelistLen]
}

// Reset clears the whitelist. Used only by tests.
func Reset() {
	whitelistLen = 0
}

// allowed reports whether [addr, addr+size) is contained entirely within
// one whitelisted region and does not touch the forbidden kernel range.
func allowed(addr uintptr, size uintptr) bool {
	end := addr + size
	if end < addr {
		return false // overflow
	}
	if addr < kconfig.KernelForbiddenEnd && end > kconfig.KernelForbiddenStart {
		return false
	}
	for i := 0; i < whitelistLen; i++ {
		r := whitelist[i]
		if addr >= r.Start && end <= r.End {
			return true
		}
	}
	return false
}

// backend indirects the actual load/store primitives behind function
// variables defaulting to internal/asm. Host-side tests
// swap these for an in-memory FakeBus so the whitelist and barrier-
// ordering logic above is exercised without touching real hardware
// addresses; production code never reassigns them.
var (
	load8Fn   = asm.Load8
	load32Fn  = asm.Load32
	load64Fn  = asm.Load64
	store8Fn  = asm.Store8
	store32Fn = asm.Store32
	store64Fn = asm.Store64
)

// Read8/Read32/Read64 perform a whitelisted, barrier-disciplined volatile
// load. A rejected access returns an all-ones sentinel of the requested
// width.
//
//go:nosplit
func Read8(addr uintptr) uint8 {
	if !allowed(addr, 1) {
		logReject(kernelerr.ErrWhitelistViolation.Error() + ": 1-byte read")
		return 0xFF
	}
	v := load8Fn(addr)
	asm.Dmb()
	return v
}

//go:nosplit
func Read32(addr uintptr) uint32 {
	if !allowed(addr, 4) {
		logReject(kernelerr.ErrWhitelistViolation.Error() + ": 4-byte read")
		return 0xFFFFFFFF
	}
	v := load32Fn(addr)
	asm.Dmb()
	return v
}

//go:nosplit
func Read64(addr uintptr) uint64 {
	if !allowed(addr, 8) {
		logReject(kernelerr.ErrWhitelistViolation.Error() + ": 8-byte read")
		return 0xFFFFFFFFFFFFFFFF
	}
	v := load64Fn(addr)
	asm.Dmb()
	return v
}

// Write8/Write32/Write64 perform a whitelisted, barrier-disciplined
// volatile store. A rejected access is silently dropped and logged.
//
//go:nosplit
func Write8(addr uintptr, v uint8) {
	if !allowed(addr, 1) {
		logReject(kernelerr.ErrWhitelistViolation.Error() + ": 1-byte write")
		return
	}
	store8Fn(addr, v)
	asm.Dsb()
}

//go:nosplit
func Write32(addr uintptr, v uint32) {
	if !allowed(addr, 4) {
		logReject(kernelerr.ErrWhitelistViolation.Error() + ": 4-byte write")
		return
	}
	store32Fn(addr, v)
	asm.Dsb()
}

//go:nosplit
func Write64(addr uintptr, v uint64) {
	if !allowed(addr, 8) {
		logReject(kernelerr.ErrWhitelistViolation.Error() + ": 8-byte write")
		return
	}
	store64Fn(addr, v)
	asm.Dsb()
}

// Package asm exposes the hardware primitives that cannot be written in Go:
// raw volatile MMIO access, the barrier instructions, and the AArch64
// system registers the MMU and exception-vector setup depend on. Every
// function here is a thin Plan9-assembly wrapper with no logic of its own
// — composing "volatile access" with "barrier" stays explicit in the
// caller (internal/mmio, internal/mmu, internal/gic), never folded
// together (see DESIGN.md).
package asm

// Load8/Load32/Load64 perform a single volatile load of the given width at
// physaddr. No barrier is implied — callers that need ordering issue it
// explicitly via Dmb/Dsb/Isb.
func Load8(physaddr uintptr) uint8

func Load32(physaddr uintptr) uint32

func Load64(physaddr uintptr) uint64

// Store8/Store32/Store64 perform a single volatile store of the given width
// at physaddr.
func Store8(physaddr uintptr, val uint8)

func Store32(physaddr uintptr, val uint32)

func Store64(physaddr uintptr, val uint64)

// Dmb issues a full-system Data Memory Barrier.
func Dmb()

// Dsb issues a full-system Data Synchronization Barrier.
func Dsb()

// Isb issues an Instruction Synchronization Barrier.
func Isb()

// Wfe halts the core until an event or interrupt wakes it.
func Wfe()

// Sev signals an event to any core waiting in Wfe (unused in the
// single-core configuration this kernel targets, kept for symmetry with the
// architecture's WFE/SEV pair).
func Sev()

// CurrentEL returns the current exception level encoded in bits [3:2] of
// the CurrentEL system register (0 = EL0 .. 3 = EL3).
func CurrentEL() uint64

// ReadMairEl1/WriteMairEl1 access MAIR_EL1.
func ReadMairEl1() uint64
func WriteMairEl1(v uint64)

// ReadTcrEl1/WriteTcrEl1 access TCR_EL1.
func ReadTcrEl1() uint64
func WriteTcrEl1(v uint64)

// ReadTtbr0El1/WriteTtbr0El1 access TTBR0_EL1.
func ReadTtbr0El1() uint64
func WriteTtbr0El1(v uint64)

// WriteTtbr1El1 accesses TTBR1_EL1; this kernel always writes it to zero
// since only TTBR0 is used.
func WriteTtbr1El1(v uint64)

// ReadSctlrEl1/WriteSctlrEl1 access SCTLR_EL1.
func ReadSctlrEl1() uint64
func WriteSctlrEl1(v uint64)

// WriteVbarEl1 installs the exception vector table base address.
func WriteVbarEl1(addr uintptr)

// InvalidateTLBAll issues TLBI VMALLE1.
func InvalidateTLBAll()

// InvalidateICacheAll issues IC IALLU.
func InvalidateICacheAll()

// ReadELREl1/ReadSpsrEl1/ReadEsrEl1/ReadFarEl1 read the exception-context
// system registers an exception-vector trampoline passes on to its Go
// handler.
func ReadELREl1() uint64
func ReadSpsrEl1() uint64
func ReadEsrEl1() uint64
func ReadFarEl1() uint64

// StackPointer returns the current SP.
func StackPointer() uintptr

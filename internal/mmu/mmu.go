// Package mmu configures identity-mapped virtual memory: three statically
// allocated 4KiB-aligned page tables (L0, L1, L2), L2 2MiB block
// descriptors, MAIR/TCR/TTBR/SCTLR programming, and the enable sequence.
//
// Everything this kernel needs is mapped statically at boot; there is no
// demand-paging L3 level, frame allocator, or page-fault handler, since
// the kernel never allocates after boot and never takes a translation
// fault for memory it owns (see DESIGN.md).
package mmu

import (
	"unsafe"

	"github.com/grosheth/OdinOs-ARM64/internal/asm"
)

const (
	pteValid = 1 << 0
	pteTable = 1 << 1 // bits[1:0]=0b11: table descriptor (L0/L1); L2 blocks use 0b01

	pteAF = 1 << 10 // access flag, must be set

	pteAttrNormal = 0 << 2 // MAIR index 0: Normal write-back cacheable
	pteAttrDevice = 1 << 2 // MAIR index 1: Device-nGnRnE

	pteSHInner = 0b11 << 8 // Inner Shareable

	pteAPRWEL1 = 0b00 << 6 // R/W at EL1
	pteAPROEL1 = 0b10 << 6 // RO at EL1

	ptePXN = uint64(1) << 53
	pteUXN = uint64(1) << 54
)

const (
	l0Shift = 39
	l1Shift = 30
	l2Shift = 21

	blockSize = 1 << l2Shift // 2 MiB, the L2 block granularity

	entriesPerTable = 512
)

// Page table region: three statically allocated, BSS-zeroed, 4KiB-aligned
// tables. They are mutated only here, before SCTLR.M is set;
// after MMU enable they are logically frozen.
//
//go:align 4096
var l0Table [entriesPerTable]uint64

//go:align 4096
var l1Table [entriesPerTable]uint64

//go:align 4096
var l2Table [entriesPerTable]uint64

// Only one L2 table (1 GiB reach) is statically allocated. MapRange
// points every L1 entry it populates at that same L2 table, so mappings
// in different GiBs share it and are indexed by VA bits [29:21] alone:
// the kernel image (GiB 1, L2 indices 0-63) and the UART/GIC windows
// (GiB 0, indices 64-72) land on disjoint entries, and each mapping is
// also reachable at the same offset in every other populated GiB.

// MapRange aligns virt/phys down to 2 MiB, the end up, and for each 2 MiB
// step lazily populates L0→L1 and writes an L2 block descriptor.
// Executable regions omit PXN/UXN; device regions set both and use the
// device MAIR index. Applying the same range twice leaves the tables
// unchanged.
func MapRange(virt, phys, size uintptr, isDevice, executable bool) {
	virtStart := virt &^ (blockSize - 1)
	physStart := phys &^ (blockSize - 1)
	end := virt + size
	end = (end + blockSize - 1) &^ (blockSize - 1)

	attr := uint64(pteAttrNormal)
	if isDevice {
		attr = pteAttrDevice
	}
	ap := uint64(pteAPRWEL1)
	perm := uint64(0)
	if !executable {
		perm = ptePXN | pteUXN
	}
	if isDevice {
		perm = ptePXN | pteUXN
	}

	for v, p := virtStart, physStart; v < end; v, p = v+blockSize, p+blockSize {
		l0idx := (v >> l0Shift) & 0x1FF
		l1idx := (v >> l1Shift) & 0x1FF
		l2idx := (v >> l2Shift) & 0x1FF

		if l0Table[l0idx]&pteValid == 0 {
			l0Table[l0idx] = descTableEntry(physAddrOfL1())
		}
		if l1Table[l1idx]&pteValid == 0 {
			l1Table[l1idx] = descTableEntry(physAddrOfL2())
		}

		l2Table[l2idx] = uint64(p) | pteValid | pteAF | attr | ap | pteSHInner | perm
	}
}

func descTableEntry(nextTablePhys uintptr) uint64 {
	return uint64(nextTablePhys) | pteValid | pteTable
}

func physAddrOfL1() uintptr { return uintptrOfArray(&l1Table) }
func physAddrOfL2() uintptr { return uintptrOfArray(&l2Table) }

// uintptrOfArray returns a statically allocated table's address. Since
// this kernel runs identity-mapped (VA==PA) until Enable's own SCTLR
// write takes effect, the table's link-time address is already its
// physical address.
func uintptrOfArray(t *[entriesPerTable]uint64) uintptr {
	return uintptr(unsafe.Pointer(t))
}

// Init resets the statically allocated tables and links L0 entry 0 to the
// L1 table. TTBR0_EL1 is programmed later, by Enable.
func Init() {
	for i := range l0Table {
		l0Table[i] = 0
	}
	for i := range l1Table {
		l1Table[i] = 0
	}
	for i := range l2Table {
		l2Table[i] = 0
	}
	l0Table[0] = descTableEntry(uintptrOfArray(&l1Table))
}

// Enable programs MAIR_EL1, TCR_EL1, TTBR0_EL1, invalidates the I-cache
// and TLB, then sets SCTLR_EL1.{M,C,I}.
func Enable() {
	// MAIR_EL1: Attr0=0xFF Normal WB, Attr1=0x00 Device-nGnRnE.
	asm.WriteMairEl1(0xFF)

	// TCR_EL1: T0SZ=16 (48-bit VA), TG0=4KiB(0b00), SH0=3, ORGN0=IRGN0=1,
	// IPS=0.
	var tcr uint64
	tcr |= 16 << 0 // T0SZ
	tcr |= 1 << 8  // IRGN0 = WB cacheable
	tcr |= 1 << 10 // ORGN0 = WB cacheable
	tcr |= 3 << 12 // SH0 = inner shareable
	asm.WriteTcrEl1(tcr)

	asm.WriteTtbr1El1(0)
	asm.WriteTtbr0El1(uint64(uintptrOfArray(&l0Table)))

	asm.InvalidateICacheAll()
	asm.InvalidateTLBAll()
	asm.Dsb()
	asm.Isb()

	sctlr := asm.ReadSctlrEl1()
	sctlr |= 1 << 0  // M
	sctlr |= 1 << 2  // C
	sctlr |= 1 << 12 // I
	asm.Dsb()
	asm.Isb()
	asm.WriteSctlrEl1(sctlr)
	asm.Isb()
}

// Enabled reports SCTLR_EL1.{M,C,I}.
func Enabled() bool {
	sctlr := asm.ReadSctlrEl1()
	const want = 1<<0 | 1<<2 | 1<<12
	return sctlr&want == want
}

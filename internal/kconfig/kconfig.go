// Package kconfig centralizes the compile-time configuration surface of the
// kernel: fallback addresses, size ceilings and table capacities that the
// rest of the tree would otherwise scatter across driver files as inline
// magic numbers. Nothing here is mutable at runtime — there is no config
// file, since nothing exists to read one from before the MMU and UART are
// alive.
package kconfig

const (
	// FallbackUARTBase is the PL011 base QEMU's virt machine always maps,
	// used before the FDT has been parsed and whenever
	// FDT discovery fails.
	FallbackUARTBase = 0x09000000

	// KernelForbiddenStart/End bound the MMIO whitelist's one hard
	// exclusion: the kernel's own image window can never be treated as a
	// device register range.
	KernelForbiddenStart = 0x40000000
	KernelForbiddenEnd   = 0x48000000

	// KernelImageBase/Size is the Normal, executable region mapped before
	// MMU enable.
	KernelImageBase = 0x40000000
	KernelImageSize = 128 * 1024 * 1024

	// UARTWindowSize and GICWindowSize are the Device, non-executable
	// windows mapped for discovered MMIO peripherals.
	UARTWindowSize = 4 * 1024
	GICWindowSize  = 64 * 1024
)

const (
	// MaxDTSize is the FDT blob size ceiling: totalsize ≤
	// 16 MiB is accepted, totalsize > 16 MiB is rejected outright.
	MaxDTSize = 16 * 1024 * 1024

	// MaxPropertySize bounds any single FDT_PROP value.
	MaxPropertySize = 1 * 1024 * 1024

	// MaxNodeNameLength bounds FDT_BEGIN_NODE name scans:
	// exactly 4095 bytes is accepted, 4096 is rejected.
	MaxNodeNameLength = 4096

	// MaxTraversalTokens is the hard per-traversal iteration ceiling that
	// guarantees termination on pathological blobs.
	MaxTraversalTokens = 10000

	// MaxStringScan bounds every substring/name comparison the parser
	// performs.
	MaxStringScan = 4096
)

const (
	// IRQTableSize is the fixed handler-table capacity:
	// slots 0..1019 are valid GIC interrupt IDs; 1020 is a sentinel count,
	// not a registerable ID.
	IRQTableSize = 1020

	// SpuriousIRQ is the GICC_IAR sentinel meaning "nothing pending".
	SpuriousIRQ = 1023
)

const (
	// UARTRingCapacity is the SPSC RX ring's fixed capacity, a power of
	// two so index wraparound is a cheap mask.
	UARTRingCapacity = 256
)

const (
	// ShellLineCapacity bounds the interactive line buffer.
	ShellLineCapacity = 128

	// ShellPrompt is emitted at the start of every input line.
	ShellPrompt = "OdinOS> "
)

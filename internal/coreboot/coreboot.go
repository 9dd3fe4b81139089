// Package coreboot holds the assembly boot trampoline and exception
// vector table that sit below everything else in this kernel: EL
// detection, stack setup, BSS zero, and the jump into the high-level Go
// entry point with the firmware-supplied FDT pointer preserved.
//
// The actual ELF entry address and memory layout are fixed by a linker
// script (not part of this package); it assumes the script places Rt0 at
// the entry point and defines the __stack_top/__bss_start/__bss_end
// symbols referenced from boot_arm64.s.
package coreboot

import "github.com/grosheth/OdinOs-ARM64/internal/asm"

// Rt0 is the firmware entry point (declared here so the rest of the tree
// can refer to it; implemented in boot_arm64.s). Firmware jumps here with
// interrupts masked and the FDT physical address in the first argument
// register; the stack and BSS are not guaranteed valid.
func Rt0()

// VectorTableBase returns the link-time address of the exception vector
// table (implemented in vectors_arm64.s as a 2KiB-aligned symbol).
func VectorTableBase() uintptr

// InstallVectors writes the vector table's address to VBAR_EL1 followed
// by ISB.
func InstallVectors() {
	asm.WriteVbarEl1(VectorTableBase())
	asm.Isb()
}

// Command kernel is OdinOS-ARM64's entry point: the phase-sequenced
// bring-up called from the assembly boot trampoline (internal/coreboot)
// once the stack is live and BSS is zero — temporary UART, FDT parse,
// UART/GIC discovery, vector install, MMU init/map/enable, GIC init,
// UART RX IRQ enable, shell loop. There is no demand-paging or
// runtime-patching machinery here: this kernel never allocates after
// boot and never schedules anything beyond its one foreground loop plus
// IRQ handlers (see DESIGN.md).
package main

import (
	"unsafe"

	"github.com/grosheth/OdinOs-ARM64/internal/coreboot"
	"github.com/grosheth/OdinOs-ARM64/internal/fdt"
	"github.com/grosheth/OdinOs-ARM64/internal/gic"
	"github.com/grosheth/OdinOs-ARM64/internal/kconfig"
	"github.com/grosheth/OdinOs-ARM64/internal/kernelerr"
	"github.com/grosheth/OdinOs-ARM64/internal/klog"
	"github.com/grosheth/OdinOs-ARM64/internal/mmio"
	"github.com/grosheth/OdinOs-ARM64/internal/mmu"
	"github.com/grosheth/OdinOs-ARM64/internal/shell"
	"github.com/grosheth/OdinOs-ARM64/internal/uart"
)

// uartWriter adapts the uart package's free functions to klog.Writer.
type uartWriter struct{}

func (uartWriter) WriteByte(b byte) { uart.WriteByte(b) }

// KernelMain receives the FDT physical address as its only argument,
// preserved through the boot trampoline in X0. It never
// returns.
//
//go:nosplit
func KernelMain(fdtAddr uintptr) {
	// Phase 1: temporary UART init at the compiled-in fallback base, for
	// diagnostics before anything else exists.
	mmio.Register("kernel-image", kconfig.KernelImageBase, kconfig.KernelImageSize)
	mmio.Register("uart-fallback", kconfig.FallbackUARTBase, kconfig.UARTWindowSize)
	uart.Init(kconfig.FallbackUARTBase)
	klog.Init(uartWriter{})
	mmio.Logger = func(msg string) { klog.Warn(msg) }

	klog.Info("boot: fallback uart ready", klog.Hex("base", uint64(kconfig.FallbackUARTBase)))

	var uartInfo fdt.UartInfo
	var gicInfo fdt.GicInfo

	// Phase 2: fdt_init; if ok, fdt_find_uart_full -> re-init UART with
	// the discovered base.
	if fdtAddr != 0 {
		blob := unsafe.Slice((*byte)(unsafe.Pointer(fdtAddr)), kconfig.MaxDTSize)
		if h, ok := fdt.ParseHeader(blob); ok {
			klog.Info("fdt: header ok", klog.Dec("totalsize", uint64(h.TotalSize)))
			uartInfo = fdt.FindUART(blob)
			if uartInfo.Found {
				mmio.Register("uart", uartInfo.BaseAddress, kconfig.UARTWindowSize)
				uart.Init(uartInfo.BaseAddress)
				klog.Info("uart: reinitialized from fdt",
					klog.Hex("base", uint64(uartInfo.BaseAddress)),
					klog.Dec("irq", uint64(uartInfo.IRQNumber)))
			} else {
				klog.Warn(kernelerr.ErrNotFound.Error() + ": uart, keeping fallback base")
			}

			// Phase 3: fdt_find_gic.
			gicInfo = fdt.FindGIC(blob)
			if gicInfo.Found {
				mmio.Register("gicd", gicInfo.DistributorBase, kconfig.GICWindowSize)
				mmio.Register("gicc", gicInfo.CPUInterfaceBase, kconfig.GICWindowSize)
			} else {
				klog.Warn(kernelerr.ErrNotFound.Error() + ": gic")
			}
		} else {
			klog.Warn(kernelerr.ErrMalformedHeader.Error() + ", using fallback devices")
		}
	} else {
		klog.Warn("fdt: no blob supplied (address 0)")
	}

	// Phase 4: install exception vectors.
	coreboot.InstallVectors()
	klog.Info("vectors: installed")

	// Phase 5: MMU init -- map kernel image, UART window, and each
	// discovered GIC window; enable.
	mmu.Init()
	mmu.MapRange(kconfig.KernelImageBase, kconfig.KernelImageBase, kconfig.KernelImageSize, false, true)

	var uartBase uintptr = kconfig.FallbackUARTBase
	if uartInfo.Found {
		uartBase = uartInfo.BaseAddress
	}
	mmu.MapRange(uartBase, uartBase, kconfig.UARTWindowSize, true, false)

	if gicInfo.Found {
		mmu.MapRange(gicInfo.DistributorBase, gicInfo.DistributorBase, kconfig.GICWindowSize, true, false)
		mmu.MapRange(gicInfo.CPUInterfaceBase, gicInfo.CPUInterfaceBase, kconfig.GICWindowSize, true, false)
	}

	mmu.Enable()
	klog.Info("mmu: enabled", klog.Dec("sctlr_ok", boolToUint64(mmu.Enabled())))

	// Phase 6: gic_init if GIC was found.
	if gicInfo.Found {
		gic.Init(gicInfo.DistributorBase, gicInfo.CPUInterfaceBase)
	}

	// Phase 7: if both GIC and UART IRQ are known, enable UART RX
	// interrupts.
	if gicInfo.Found && uartInfo.Found && uartInfo.IRQNumber != 0 {
		uart.EnableRXInterrupt(uartInfo.IRQNumber)
	} else {
		klog.Warn("No GIC — UART interrupts unavailable")
	}

	// Phase 8: enter the shell loop. Never returns.
	shell.Run()
}

func boolToUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

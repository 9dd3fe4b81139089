// Package uart implements the PL011 driver and its interrupt-driven RX
// ring buffer: init sequence, polled TX, IRQ-driven RX draining into a
// lock-free SPSC ring, and the blocking WFE-based foreground read.
//
// TX is polled rather than interrupt-driven, and the ring only carries
// RX bytes. Ring head/tail use sync/atomic acquire/release loads and
// stores (see DESIGN.md) rather than plain field reads: this compiles to
// the native LDAR/STLR pair on arm64 with no OS dependency, giving the
// producer/consumer ordering needed between the IRQ handler and the
// foreground reader.
package uart

import (
	"sync/atomic"

	"github.com/grosheth/OdinOs-ARM64/internal/asm"
	"github.com/grosheth/OdinOs-ARM64/internal/gic"
	"github.com/grosheth/OdinOs-ARM64/internal/irq"
	"github.com/grosheth/OdinOs-ARM64/internal/kconfig"
	"github.com/grosheth/OdinOs-ARM64/internal/klog"
	"github.com/grosheth/OdinOs-ARM64/internal/mmio"
)

// PL011 register offsets.
const (
	regDR   = 0x00
	regFR   = 0x18
	regIBRD = 0x24
	regFBRD = 0x28
	regLCRH = 0x2C
	regCR   = 0x30
	regIMSC = 0x38
	regICR  = 0x44
)

const (
	frBusy = 1 << 3
	frRXFE = 1 << 4
	frTXFF = 1 << 5

	crUARTEN = 1 << 0
	crTXE    = 1 << 8
	crRXE    = 1 << 9

	lcrhFEN  = 1 << 4
	lcrhWLEN = 0b11 << 5 // 8 bits

	imscRXIM = 1 << 4

	icrAll = 0x7FF
)

var base uintptr

// ring is the fixed-capacity SPSC byte queue fed from IRQ context and
// drained by the foreground loop.
type ring struct {
	buf  [kconfig.UARTRingCapacity]byte
	head uint32 // producer-owned, written by IRQ
	tail uint32 // consumer-owned, written by foreground
}

var rx ring

const ringMask = kconfig.UARTRingCapacity - 1

// Init runs the PL011 initialization sequence at the given
// physical base: disable, drain BUSY, clear FIFO, clear pending
// interrupts, program the baud divisors for 115200 @ 24 MHz, set 8N1 with
// FIFOs enabled, mask all interrupts, then enable UART/TX/RX.
//
// Re-initializing at a new base produces the same
// observable configuration as a first-time init at that address: this
// function is idempotent in its effect on the target registers.
func Init(physBase uintptr) {
	base = physBase

	mmio.Write32(base+regCR, 0)
	for mmio.Read32(base+regFR)&frBusy != 0 {
	}
	mmio.Write32(base+regLCRH, 0)
	mmio.Write32(base+regICR, icrAll)

	mmio.Write32(base+regIBRD, 13)
	mmio.Write32(base+regFBRD, 1)
	mmio.Write32(base+regLCRH, lcrhWLEN|lcrhFEN)

	mmio.Write32(base+regIMSC, 0)

	mmio.Write32(base+regCR, crUARTEN|crTXE|crRXE)
}

// WriteByte satisfies klog.Writer, letting the UART double as the
// kernel's log sink.
//
//go:nosplit
func WriteByte(b byte) {
	PutC(b)
}

// PutC spins while the TX FIFO is full, then writes b.
//
//go:nosplit
func PutC(b byte) {
	for mmio.Read32(base+regFR)&frTXFF != 0 {
	}
	mmio.Write32(base+regDR, uint32(b))
}

// Puts writes s, capped at 4096 bytes; it returns false if s is longer
// than the cap, in which case the bytes past the cap are not written. It
// does not look for a NUL terminator: the string's length bounds the write.
func Puts(s string) bool {
	const capLen = 4096
	n := len(s)
	if n > capLen {
		n = capLen
	}
	for i := 0; i < n; i++ {
		PutC(s[i])
	}
	return len(s) <= capLen
}

// EnableRXInterrupt registers the ring-feeder for irqNum with the
// dispatcher, sets IMSC.RXIM, and enables the interrupt at the GIC. The
// uart package itself does not keep irqNum.
func EnableRXInterrupt(irqNum uint32) {
	irq.Register(irqNum, rxHandler)
	v := mmio.Read32(base + regIMSC)
	mmio.Write32(base+regIMSC, v|imscRXIM)
	gic.EnableInterrupt(irqNum)
	klog.Info("uart: rx interrupt enabled", klog.Dec("irq", uint64(irqNum)))
}

// rxHandler drains the RX FIFO into the ring, dropping bytes silently on
// overrun, then clears ICR.RXIM.
//
//go:nosplit
func rxHandler(irqNum uint32) {
	for mmio.Read32(base+regFR)&frRXFE == 0 {
		c := byte(mmio.Read32(base + regDR))
		push(c)
	}
	mmio.Write32(base+regICR, imscRXIM)
}

// push is the SPSC producer side: load head/tail with
// acquire, drop on full, else store the byte then publish head with
// release.
//
//go:nosplit
func push(b byte) {
	head := atomic.LoadUint32(&rx.head)
	tail := atomic.LoadUint32(&rx.tail)
	if (head+1)&ringMask == tail&ringMask {
		return // full, drop silently
	}
	rx.buf[head&ringMask] = b
	atomic.StoreUint32(&rx.head, head+1)
}

// pop is the SPSC consumer side: load head/tail with acquire, return
// empty if equal, else read the byte then publish tail with release.
//
//go:nosplit
func pop() (byte, bool) {
	head := atomic.LoadUint32(&rx.head)
	tail := atomic.LoadUint32(&rx.tail)
	if head&ringMask == tail&ringMask {
		return 0, false
	}
	b := rx.buf[tail&ringMask]
	atomic.StoreUint32(&rx.tail, tail+1)
	return b, true
}

// ReadByte blocks with WFE until a byte is available, then returns it.
//
//go:nosplit
func ReadByte() byte {
	for {
		if b, ok := pop(); ok {
			return b
		}
		asm.Wfe()
	}
}

// Occupancy returns the number of bytes currently queued in the RX ring.
func Occupancy() uint32 {
	head := atomic.LoadUint32(&rx.head)
	tail := atomic.LoadUint32(&rx.tail)
	return (head - tail) & ringMask
}

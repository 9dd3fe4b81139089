// Package shell is the interactive line-oriented consumer of the UART RX
// ring buffer: a bounded line buffer with echo/backspace handling, and a
// static command table dispatched by exact-name match.
package shell

import (
	"github.com/grosheth/OdinOs-ARM64/internal/gic"
	"github.com/grosheth/OdinOs-ARM64/internal/irq"
	"github.com/grosheth/OdinOs-ARM64/internal/kconfig"
	"github.com/grosheth/OdinOs-ARM64/internal/uart"
)

const (
	charBS  = 0x08
	charDEL = 0x7F
	charCR  = 0x0D
	charLF  = 0x0A
	charBEL = 0x07
)

// Command is one entry of the static command table.
type Command struct {
	Name string
	Help string
	Run  func()
}

var commands []Command

// putsFn/putcFn indirect through uart.Puts/uart.PutC by default; _test.go
// swaps these for an in-memory sink so dispatch and the command table can
// be exercised without touching the real UART, the same seam
// internal/mmio and internal/gic use for their own backends.
var (
	putsFn = uart.Puts
	putcFn = uart.PutC
)

func init() {
	commands = []Command{
		{Name: "help", Help: "list available commands", Run: cmdHelp},
		{Name: "clear", Help: "clear the terminal", Run: cmdClear},
		{Name: "stats", Help: "print IRQ and ring buffer counters", Run: cmdStats},
		{Name: "echo", Help: "echo is a no-op placeholder; input already echoes", Run: func() {}},
	}
}

func cmdHelp() {
	putsFn("available commands:\r\n")
	for _, c := range commands {
		putsFn("  ")
		putsFn(c.Name)
		putsFn(" - ")
		putsFn(c.Help)
		putsFn("\r\n")
	}
}

func cmdClear() {
	putsFn("\x1b[2J\x1b[H")
}

func cmdStats() {
	total, spuriousCount, unhandledCount := irq.Stats()
	putsFn("irq: total=")
	putDec(total)
	putsFn(" spurious=")
	putDec(spuriousCount)
	putsFn(" unhandled=")
	putDec(unhandledCount)
	putsFn("\r\n")

	putsFn("ring: occupancy=")
	putDec(uint64(uart.Occupancy()))
	putsFn("\r\n")

	if gic.Initialized() {
		putsFn("gic: distributor=")
		putBool(gic.DistributorCTLREnabled())
		putsFn(" cpu=")
		putBool(gic.CPUCTLREnabled())
		putsFn("\r\n")
	}
}

func putDec(v uint64) {
	if v == 0 {
		putcFn('0')
		return
	}
	var buf [20]byte
	n := 0
	for v > 0 {
		buf[n] = byte('0' + v%10)
		v /= 10
		n++
	}
	for n > 0 {
		n--
		putcFn(buf[n])
	}
}

func putBool(b bool) {
	if b {
		putsFn("1")
	} else {
		putsFn("0")
	}
}

// dispatch looks up line against the command table by exact name match
// and runs it; an unknown line prints an error, matching a shell's
// minimal "unknown command" contract.
func dispatch(line string) {
	if line == "" {
		return
	}
	for _, c := range commands {
		if c.Name == line {
			c.Run()
			return
		}
	}
	putsFn("unknown command: ")
	putsFn(line)
	putsFn("\r\n")
}

// Run is the foreground loop: prompt, read a bounded
// line with backspace/DEL handling, dispatch, repeat. It never returns.
func Run() {
	var line [kconfig.ShellLineCapacity]byte
	for {
		putsFn(kconfig.ShellPrompt)
		n := 0
		for {
			b := uart.ReadByte()
			switch b {
			case charCR, charLF:
				putsFn("\r\n")
				dispatch(string(line[:n]))
				n = -1 // signal: break out to re-prompt
			case charBS, charDEL:
				if n > 0 {
					n--
					putsFn("\b \b")
				} else {
					putcFn(charBEL)
				}
				continue
			default:
				if n >= 0 && n < len(line) {
					line[n] = b
					n++
					putcFn(b)
				} else {
					putcFn(charBEL)
				}
				continue
			}
			break
		}
	}
}

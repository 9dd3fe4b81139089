// Package fdt implements a bounds-safe, single-pass Flattened Device Tree
// parser that discovers the UART and GIC MMIO windows a freestanding
// kernel needs before it can do anything else.
//
// The walker steps through the FDT_BEGIN_NODE/FDT_PROP/FDT_END_NODE token
// stream under fixed iteration, property-size, and name-length ceilings,
// driving two named device searches (UART, GIC) plus a diagnostic walker
// (fdt.Walk). Byte access is manual big-endian decoding rather than
// encoding/binary: the FDT blob lives at an arbitrary physical address
// handed over by firmware, not behind an io.Reader.
package fdt

import "github.com/grosheth/OdinOs-ARM64/internal/kconfig"

const (
	magic = 0xd00dfeed

	tokenBeginNode = 1
	tokenEndNode   = 2
	tokenProp      = 3
	tokenNop       = 4
	tokenEnd       = 9

	headerSize = 40 // 10 big-endian uint32 fields
)

// UartInfo is the result of a UART discovery traversal.
type UartInfo struct {
	BaseAddress uintptr
	// IRQNumber is the GIC ID after applying the SPI +32 offset convention.
	IRQNumber uint32
	// RawIRQCell is the unmodified second interrupts cell, kept so a
	// caller can verify against a specific platform's DT rather than
	// trust the +32 adjustment blindly.
	RawIRQCell uint32
	Found      bool
}

// GicInfo is the result of a GIC discovery traversal.
type GicInfo struct {
	DistributorBase  uintptr
	CPUInterfaceBase uintptr
	Found            bool
}

// reader wraps the blob with the offset/size bookkeeping every advance
// needs: each step is checked for wraparound and for staying
// within the known struct-block bound S.
type reader struct {
	blob   []byte
	base   int // byte offset of the structure block within blob
	size   int // S: size of the structure block
	tokens int // iteration ceiling counter
}

func (r *reader) u32(off int) (uint32, bool) {
	if off < 0 || off+4 < off || off+4 > r.size {
		return 0, false
	}
	b := r.blob[r.base+off:]
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), true
}

func align4(o int) int { return (o + 3) &^ 3 }

// Header holds the validated FDT header fields.
type Header struct {
	Magic         uint32
	TotalSize     uint32
	OffDtStruct   uint32
	OffDtStrings  uint32
	SizeDtStruct  uint32
	SizeDtStrings uint32
	Version       uint32
}

// ParseHeader validates the FDT header invariants: magic,
// size ceiling, and that every offset+size pair lies within totalsize
// without wraparound.
func ParseHeader(blob []byte) (Header, bool) {
	var h Header
	if len(blob) < headerSize {
		return h, false
	}
	be := func(o int) uint32 {
		return uint32(blob[o])<<24 | uint32(blob[o+1])<<16 | uint32(blob[o+2])<<8 | uint32(blob[o+3])
	}
	h.Magic = be(0)
	h.TotalSize = be(4)
	h.OffDtStruct = be(8)
	h.OffDtStrings = be(12)
	h.SizeDtStruct = be(36)
	h.SizeDtStrings = be(32)
	h.Version = be(20)

	if h.Magic != magic {
		return h, false
	}
	if h.TotalSize > kconfig.MaxDTSize {
		return h, false
	}
	if h.TotalSize < headerSize {
		return h, false
	}
	if uint64(len(blob)) < uint64(h.TotalSize) {
		return h, false
	}
	structEnd := uint64(h.OffDtStruct) + uint64(h.SizeDtStruct)
	if structEnd < uint64(h.OffDtStruct) || structEnd > uint64(h.TotalSize) {
		return h, false
	}
	stringsEnd := uint64(h.OffDtStrings) + uint64(h.SizeDtStrings)
	if stringsEnd < uint64(h.OffDtStrings) || stringsEnd > uint64(h.TotalSize) {
		return h, false
	}
	return h, true
}

// visitor receives each node name entered and each property seen inside
// it. Returning from a call never aborts the overall traversal; only
// walk's own bounds/ceiling checks do.
type visitor func(nodeName string, propName string, propValue []byte)

// walk performs the single-pass, bounds-checked, iteration-capped
// traversal, invoking fn for every node/property
// pair it sees. It never panics and never writes to the blob.
func walk(blob []byte, h Header, fn visitor) bool {
	r := &reader{blob: blob, base: int(h.OffDtStruct), size: int(h.SizeDtStruct)}
	o := 0
	depth := 0
	var curName string

	for {
		r.tokens++
		if r.tokens > kconfig.MaxTraversalTokens {
			return false
		}
		tok, ok := r.u32(o)
		if !ok {
			return false
		}
		o += 4

		switch tok {
		case tokenBeginNode:
			depth++
			name, newOff, ok := readName(r, o)
			if !ok {
				return false
			}
			curName = name
			o = newOff

		case tokenEndNode:
			if depth == 0 {
				return false
			}
			depth--

		case tokenProp:
			propLen, ok := r.u32(o)
			if !ok {
				return false
			}
			if propLen > kconfig.MaxPropertySize {
				return false
			}
			o += 4
			nameOff, ok := r.u32(o)
			if !ok {
				return false
			}
			_ = nameOff
			o += 4

			if o < 0 || o+int(propLen) < o || o+int(propLen) > r.size {
				return false
			}
			value := r.blob[r.base+o : r.base+o+int(propLen)]
			propName, ok := stringAt(blob, h, nameOff)
			if !ok {
				return false
			}
			fn(curName, propName, value)
			o += align4(int(propLen))

		case tokenNop:
			// skip

		case tokenEnd:
			return true

		default:
			return false
		}
	}
}

// readName reads a NUL-terminated node name starting at byte offset o
// within the structure block, capped at MaxNodeNameLength, then
// 4-byte-aligns the returned offset.
func readName(r *reader, o int) (string, int, bool) {
	start := o
	n := 0
	for {
		if n >= kconfig.MaxNodeNameLength {
			return "", 0, false
		}
		if o < 0 || o >= r.size {
			return "", 0, false
		}
		b := r.blob[r.base+o]
		o++
		n++
		if b == 0 {
			break
		}
	}
	name := string(r.blob[r.base+start : r.base+o-1])
	return name, align4(o), true
}

// stringAt resolves a strings-block offset to a NUL-terminated string,
// scanned within MaxStringScan bytes.
func stringAt(blob []byte, h Header, off uint32) (string, bool) {
	base := int(h.OffDtStrings) + int(off)
	if base < int(h.OffDtStrings) || base >= int(h.OffDtStrings)+int(h.SizeDtStrings) {
		return "", false
	}
	limit := int(h.OffDtStrings) + int(h.SizeDtStrings)
	end := base
	scanned := 0
	for end < limit && end < len(blob) {
		if scanned >= kconfig.MaxStringScan {
			return "", false
		}
		if blob[end] == 0 {
			return string(blob[base:end]), true
		}
		end++
		scanned++
	}
	return "", false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if contains(s, sub) {
			return true
		}
	}
	return false
}

func contains(s, sub string) bool {
	if len(sub) == 0 {
		return true
	}
	if len(sub) > kconfig.MaxStringScan || len(s) > kconfig.MaxStringScan {
		return false
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func be64(b []byte) uint64 {
	return uint64(be32(b))<<32 | uint64(be32(b[4:]))
}

// FindUART walks the tree matching node names containing "uart",
// "serial", or "pl011"; it extracts reg (32- or 64-bit base) and the
// interrupts SPI cell, applying the +32 GIC-ID offset when the cell's
// interrupt-type field marks it SPI (see DESIGN.md).
func FindUART(blob []byte) UartInfo {
	var info UartInfo
	h, ok := ParseHeader(blob)
	if !ok {
		return info
	}

	// matchedName pins the traversal to the first node whose name matches,
	// so reg and interrupts are both captured regardless of which property
	// the token stream visits first within that node.
	var haveReg bool
	var matchedName string
	walk(blob, h, func(nodeName, propName string, value []byte) {
		if matchedName != "" && nodeName != matchedName {
			return
		}
		if matchedName == "" {
			if !containsAny(nodeName, "uart", "serial", "pl011") {
				return
			}
			matchedName = nodeName
		}
		switch propName {
		case "reg":
			if len(value) >= 8 {
				info.BaseAddress = uintptr(be64(value))
				haveReg = true
			} else if len(value) >= 4 {
				info.BaseAddress = uintptr(be32(value))
				haveReg = true
			}
		case "interrupts":
			if len(value) >= 12 {
				typ := be32(value)
				cell := be32(value[4:])
				info.RawIRQCell = cell
				if typ == 0 {
					info.IRQNumber = cell + 32
				} else {
					info.IRQNumber = cell
				}
			}
		}
	})
	// A UART with reg but no interrupts still reports Found: the shell
	// falls back to polled-only operation (cmd/kernel's main.go skips
	// EnableRXInterrupt when no IRQ was discovered) rather than treating a
	// missing interrupts property as discovery failure.
	info.Found = haveReg
	return info
}

var gicCompatible = []string{
	"arm,gic-400", "arm,cortex-a15-gic", "arm,cortex-a9-gic", "arm,gic-v2",
}

// FindGIC performs the GIC discovery traversal: match node
// names containing "interrupt-controller", "gic@", or "intc@", optionally
// confirmed by compatible, and parse reg as either four or eight 32-bit
// cells.
func FindGIC(blob []byte) GicInfo {
	var info GicInfo
	h, ok := ParseHeader(blob)
	if !ok {
		return info
	}

	var haveReg bool
	walk(blob, h, func(nodeName, propName string, value []byte) {
		if info.Found {
			return
		}
		if !containsAny(nodeName, "interrupt-controller", "gic@", "intc@") {
			return
		}
		switch propName {
		case "reg":
			switch {
			case len(value) >= 32:
				info.DistributorBase = uintptr(be64(value[0:]))
				info.CPUInterfaceBase = uintptr(be64(value[16:]))
				haveReg = true
			case len(value) >= 16:
				info.DistributorBase = uintptr(be32(value[0:]))
				info.CPUInterfaceBase = uintptr(be32(value[8:]))
				haveReg = true
			}
		case "compatible":
			// Confirmation only; absence of a match does not reject a
			// node whose name already matched.
			_ = containsAny(string(value), gicCompatible...)
		}
		if haveReg {
			info.Found = true
		}
	})
	return info
}

// Walk drives the same bounds-safe traversal for diagnostics: every
// node/property pair visited is reported to fn. It shares the exact
// parsing logic FindUART/FindGIC use, so this is a second caller of the
// core walker, not new parsing behavior.
func Walk(blob []byte, fn func(nodeName, propName string, value []byte)) bool {
	h, ok := ParseHeader(blob)
	if !ok {
		return false
	}
	return walk(blob, h, fn)
}

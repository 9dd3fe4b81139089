// Package vector implements the AArch64 exception-vector-table logic
// above the assembly trampolines: the ESR_EL1 exception-class decode
// table, the saved-context type passed up from each trampoline, and the
// fatal-exception banner/halt path.
//
// The decode table prints a human-readable class name instead of a bare
// hex value. There is no syscall-faking or demand-paging dispatch branch:
// this kernel never runs code at EL0 and never allocates after boot (see
// DESIGN.md).
package vector

import (
	"github.com/grosheth/OdinOs-ARM64/internal/asm"
	"github.com/grosheth/OdinOs-ARM64/internal/klog"
)

// Exception classes, as encoded in ESR_EL1 bits [31:26].
const (
	ECUnknown         = 0b000000
	ECTrapWFx         = 0b000001
	ECTrapMCRMRCCP14  = 0b000101
	ECTrapMCRRMRCCP14 = 0b001100
	ECTrapMCRMRCCP15  = 0b000011
	ECTrapMCRRMRCCP15 = 0b000100
	ECTrapMSRMRS      = 0b011000
	ECTrapSVE         = 0b011001
	ECPrefetchAbortEL0 = 0b100000
	ECPrefetchAbortELx = 0b100001
	ECDataAbortEL0    = 0b100100
	ECDataAbortELx    = 0b100101
	ECBreakpointEL0   = 0b110000
	ECBreakpointELx   = 0b110001
	ECStepEL0         = 0b110010
	ECStepELx         = 0b110011
	ECWatchpointEL0   = 0b110100
	ECWatchpointELx   = 0b110101
	ECSVCEL0A64       = 0b010101
	ECHVC             = 0b010110
	ECSMC             = 0b010111
	ECERET            = 0b011010
	ECIllegalExec     = 0b001110
	ECSError          = 0b101111
)

// DecodeESR extracts the exception class and returns it with its human
// name, for the fatal-exception banner. Unknown classes
// print as "unknown(0x..)" rather than failing.
func DecodeESR(esr uint64) (class uint32, name string) {
	class = uint32((esr >> 26) & 0x3F)
	switch class {
	case ECUnknown:
		return class, "unknown"
	case ECTrapWFx:
		return class, "trapped WFI/WFE"
	case ECTrapMCRMRCCP14, ECTrapMCRRMRCCP14, ECTrapMCRMRCCP15, ECTrapMCRRMRCCP15:
		return class, "trapped coprocessor access"
	case ECTrapMSRMRS:
		return class, "trapped MSR/MRS/system instruction"
	case ECTrapSVE:
		return class, "trapped SVE/SIMD access"
	case ECPrefetchAbortEL0, ECPrefetchAbortELx:
		return class, "instruction abort"
	case ECDataAbortEL0, ECDataAbortELx:
		return class, "data abort"
	case ECBreakpointEL0, ECBreakpointELx:
		return class, "breakpoint"
	case ECStepEL0, ECStepELx:
		return class, "software step"
	case ECWatchpointEL0, ECWatchpointELx:
		return class, "watchpoint"
	case ECSVCEL0A64:
		return class, "SVC instruction"
	case ECHVC:
		return class, "HVC instruction"
	case ECSMC:
		return class, "SMC instruction"
	case ECERET:
		return class, "illegal ERET"
	case ECIllegalExec:
		return class, "illegal execution state"
	case ECSError:
		return class, "SError"
	default:
		return class, "unknown"
	}
}

// ISS extracts the Instruction Specific Syndrome, bits [24:0] of ESR_EL1.
func ISS(esr uint64) uint32 {
	return uint32(esr & 0x1FFFFFF)
}

// Context is the register state a vector trampoline hands to its Go
// handler: the four exception-context system registers read immediately
// on entry.
type Context struct {
	ELR  uint64
	SPSR uint64
	ESR  uint64
	FAR  uint64
}

// ReadContext snapshots the current exception context system registers.
// Called from the trampoline's Go-side handler immediately on entry,
// before anything else can clobber them.
func ReadContext() Context {
	return Context{
		ELR:  asm.ReadELREl1(),
		SPSR: asm.ReadSpsrEl1(),
		ESR:  asm.ReadEsrEl1(),
		FAR:  asm.ReadFarEl1(),
	}
}

// HandleSync is the Sync-exception entry point invoked by the vector
// trampolines for "current EL, SPx" (the only configuration this kernel
// runs in; it never drops to EL0). There is no recovery
// path: print a banner and halt.
//
//go:nosplit
func HandleSync(ctx Context) {
	fatal("synchronous exception", ctx)
}

// HandleSError is the SError entry point; same fatal contract as
// HandleSync.
//
//go:nosplit
func HandleSError(ctx Context) {
	fatal("SError", ctx)
}

// HandleLowerEL handles any exception taken from a lower exception level.
// This kernel never drops to EL0, so reaching this vector
// at all indicates a fault; treat it as fatal.
//
//go:nosplit
func HandleLowerEL(ctx Context) {
	fatal("exception from lower EL", ctx)
}

//go:nosplit
func fatal(label string, ctx Context) {
	class, name := DecodeESR(ctx.ESR)
	klog.Error(label,
		klog.Hex("elr", ctx.ELR),
		klog.Hex("spsr", ctx.SPSR),
		klog.Hex("esr", ctx.ESR),
		klog.Hex("far", ctx.FAR),
		klog.Dec("ec", uint64(class)),
	)
	klog.Error(name)
	haltLoop()
}

//go:nosplit
func haltLoop() {
	for {
		asm.Wfe()
	}
}

// Vector dispatch glue: the small Go-callable entry points the assembly
// trampolines in vectors_arm64.s call after saving context, before
// restoring it and returning via ERET.
package coreboot

import (
	"github.com/grosheth/OdinOs-ARM64/internal/gic"
	"github.com/grosheth/OdinOs-ARM64/internal/irq"
	"github.com/grosheth/OdinOs-ARM64/internal/vector"
)

// onIRQ implements the three-step protocol of acknowledge,
// dispatch, EOI (EOI happens inside irq.Dispatch so the spurious
// short-circuit can skip it).
//
//go:nosplit
//go:noinline
func onIRQ() {
	id := gic.Acknowledge()
	irq.Dispatch(id)
}

// onFIQ is wired but unused by this kernel's configuration (no peripheral
// is routed to FIQ); reaching it indicates a misconfiguration, so it is
// treated the same as a fatal exception.
//
//go:nosplit
//go:noinline
func onFIQ() {
	onFatalSync()
}

//go:nosplit
//go:noinline
func onFatalSync() {
	vector.HandleSync(vector.ReadContext())
}

//go:nosplit
//go:noinline
func onFatalSError() {
	vector.HandleSError(vector.ReadContext())
}

//go:nosplit
//go:noinline
func onFatalLowerEL() {
	vector.HandleLowerEL(vector.ReadContext())
}

// Package kernelerr defines the small set of sentinel errors used by
// non-IRQ-context kernel code. IRQ-context code never returns error
// values: it counts, logs, or drops per the handler's own contract.
// Sentinels are typed string constants rather than errors.New values, so
// construction never allocates.
package kernelerr

type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrNotFound is returned when a device or node could not be located
	// in the FDT.
	ErrNotFound = Error("kernel: not found")

	// ErrOutOfBounds signals a traversal offset that would read past the
	// known struct-block size, or an MMIO access rejected by the
	// whitelist.
	ErrOutOfBounds = Error("kernel: access out of bounds")

	// ErrWhitelistViolation is the security-violation case of §7: an MMIO
	// access targeting the forbidden kernel range or outside every
	// whitelisted region.
	ErrWhitelistViolation = Error("kernel: mmio whitelist violation")

	// ErrIterationCeiling signals an FDT traversal that exceeded
	// MaxTraversalTokens without reaching FDT_END.
	ErrIterationCeiling = Error("kernel: fdt iteration ceiling exceeded")

	// ErrOversizeProperty signals an FDT_PROP whose length exceeds
	// MaxPropertySize.
	ErrOversizeProperty = Error("kernel: fdt property too large")

	// ErrMalformedHeader signals a bad FDT magic or header invariant
	// violation.
	ErrMalformedHeader = Error("kernel: malformed fdt header")
)

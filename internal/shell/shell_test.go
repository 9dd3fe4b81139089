package shell

import (
	"strings"
	"testing"
)

func withCapturedOutput(t *testing.T) *strings.Builder {
	t.Helper()
	var sb strings.Builder
	oldPuts, oldPutc := putsFn, putcFn
	putsFn = func(s string) bool { sb.WriteString(s); return true }
	putcFn = func(b byte) { sb.WriteByte(b) }
	t.Cleanup(func() { putsFn, putcFn = oldPuts, oldPutc })
	return &sb
}

func TestDispatchUnknownCommand(t *testing.T) {
	out := withCapturedOutput(t)
	dispatch("bogus")
	if got, want := out.String(), "unknown command: bogus\r\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDispatchEmptyLineIsNoOp(t *testing.T) {
	out := withCapturedOutput(t)
	dispatch("")
	if out.String() != "" {
		t.Fatalf("expected no output for an empty line, got %q", out.String())
	}
}

func TestDispatchHelpListsAllCommands(t *testing.T) {
	out := withCapturedOutput(t)
	dispatch("help")
	got := out.String()
	for _, c := range commands {
		if !strings.Contains(got, c.Name) {
			t.Errorf("help output missing command %q", c.Name)
		}
	}
}

func TestDispatchClearEmitsAnsiReset(t *testing.T) {
	out := withCapturedOutput(t)
	dispatch("clear")
	if got, want := out.String(), "\x1b[2J\x1b[H"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDispatchStatsReportsCounters(t *testing.T) {
	out := withCapturedOutput(t)
	dispatch("stats")
	got := out.String()
	if !strings.Contains(got, "irq: total=") {
		t.Errorf("stats output missing irq total, got %q", got)
	}
	if !strings.Contains(got, "ring: occupancy=") {
		t.Errorf("stats output missing ring occupancy, got %q", got)
	}
}

func TestCommandTableHasExpectedEntries(t *testing.T) {
	want := map[string]bool{"help": true, "clear": true, "stats": true, "echo": true}
	seen := map[string]bool{}
	for _, c := range commands {
		seen[c.Name] = true
		if c.Help == "" {
			t.Errorf("command %q has no help text", c.Name)
		}
		if c.Run == nil {
			t.Errorf("command %q has no Run func", c.Name)
		}
	}
	for name := range want {
		if !seen[name] {
			t.Errorf("command table missing %q", name)
		}
	}
}

func TestPutDecFormatsZeroAndMultiDigit(t *testing.T) {
	out := withCapturedOutput(t)
	putDec(0)
	if got := out.String(); got != "0" {
		t.Fatalf("putDec(0) = %q, want %q", got, "0")
	}

	out2 := withCapturedOutput(t)
	putDec(4210)
	if got := out2.String(); got != "4210" {
		t.Fatalf("putDec(4210) = %q, want %q", got, "4210")
	}
}

func TestPutBool(t *testing.T) {
	out := withCapturedOutput(t)
	putBool(true)
	if got := out.String(); got != "1" {
		t.Fatalf("putBool(true) = %q, want %q", got, "1")
	}

	out2 := withCapturedOutput(t)
	putBool(false)
	if got := out2.String(); got != "0" {
		t.Fatalf("putBool(false) = %q, want %q", got, "0")
	}
}

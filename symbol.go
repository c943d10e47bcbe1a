package nftptr

import (
	"path/filepath"
	"runtime"
	"strconv"
)

// Symbol is what a Symbolizer knows about a program counter.
type Symbol struct {
	Name string
	File string
	Line int
}

// Symbolizer resolves program counters to symbols.
type Symbolizer interface {
	// Lookup returns the first symbol covering pc.
	Lookup(pc uint64) (Symbol, bool)
}

// RuntimeSymbolizer resolves program counters of the running process through
// the Go runtime, which also consults a cgo symbolizer when one is installed
// with runtime.SetCgoTraceback.
type RuntimeSymbolizer struct{}

// Lookup returns the first frame at pc. When pc is inside inlined code that
// is the innermost inlined function.
func (RuntimeSymbolizer) Lookup(pc uint64) (Symbol, bool) {
	frames := runtime.CallersFrames([]uintptr{uintptr(pc)})
	frame, _ := frames.Next()
	if frame.Function == "" {
		return Symbol{}, false
	}
	return Symbol{Name: frame.Function, File: frame.File, Line: frame.Line}, true
}

// SourceLocation describes pc as "<symbol> (<file>:<line>)", or just the
// symbol when no line information exists, or the address in lowercase hex
// when nothing is known.
func SourceLocation(sym Symbolizer, pc uint64) string {
	if sym == nil {
		sym = RuntimeSymbolizer{}
	}
	s, ok := sym.Lookup(pc)
	if !ok || s.Name == "" {
		return strconv.FormatUint(pc, 16)
	}
	name := Demangle(s.Name)
	if s.File == "" || s.Line == 0 {
		return name
	}
	return name + " (" + filepath.Base(s.File) + ":" + strconv.Itoa(s.Line) + ")"
}

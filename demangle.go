package nftptr

import (
	"strings"

	"github.com/ianlancetaylor/demangle"
)

// typeinfoPrefix is what the demangler prints for a _ZTS (typeinfo name) symbol.
const typeinfoPrefix = "typeinfo name for "

// Demangle returns the readable form of a C++ mangled symbol or type name.
// Full symbols start with _Z; anything else is tried as a bare type
// encoding, so "P3Cow" becomes "Cow*". Input that does not demangle is
// returned unchanged.
func Demangle(name string) string {
	if strings.HasPrefix(name, "_Z") {
		if out, err := demangle.ToString(name); err == nil {
			return out
		}
		return name
	}

	// Type encodings never contain these; Go and C symbol names do.
	if name == "" || strings.ContainsAny(name, "./ ") {
		return name
	}
	out, err := demangle.ToString("_ZTS" + name)
	if err != nil || !strings.HasPrefix(out, typeinfoPrefix) {
		return name
	}
	return strings.TrimPrefix(out, typeinfoPrefix)
}

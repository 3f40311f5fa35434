package vm

import (
	"strconv"
	"strings"
)

// CallFlags restrict what the host lets a context do. The VM
// only carries them; interop services check them.
type CallFlags uint8

const (
	ReadStates CallFlags = 1 << iota
	WriteStates
	AllowCall
	AllowNotify

	NoCallFlags CallFlags = 0
	States                = ReadStates | WriteStates
	ReadOnly              = ReadStates | AllowCall
	AllCallFlags          = States | AllowCall | AllowNotify
)

var callFlagNames = []struct {
	f    CallFlags
	name string
}{
	{AllCallFlags, "All"},
	{ReadOnly, "ReadOnly"},
	{States, "States"},
	{AllowNotify, "AllowNotify"},
	{AllowCall, "AllowCall"},
	{WriteStates, "WriteStates"},
	{ReadStates, "ReadStates"},
}

// Has reports whether every flag in want is set in f.
func (f CallFlags) Has(want CallFlags) bool { return f&want == want }

func (f CallFlags) String() string {
	if f == NoCallFlags {
		return "None"
	}
	var parts []string
	rest := f
	for _, n := range callFlagNames {
		if rest&n.f == n.f {
			parts = append(parts, n.name)
			rest &^= n.f
		}
	}
	if rest != 0 || len(parts) == 0 {
		return "CallFlags(?)"
	}
	// Matched largest first; print smallest first.
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ", ")
}

// ParseCallFlags parses a comma-separated list of flag names, as
// printed by String, or a decimal number.
func ParseCallFlags(s string) (CallFlags, error) {
	if n, err := strconv.ParseUint(s, 10, 8); err == nil {
		if CallFlags(n)&^AllCallFlags != 0 {
			return 0, faultf(ErrBadValue, "Invalid call flags: %d", n)
		}
		return CallFlags(n), nil
	}
	var f CallFlags
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "None" {
			continue
		}
		found := false
		for _, n := range callFlagNames {
			if n.name == part {
				f |= n.f
				found = true
				break
			}
		}
		if !found {
			return 0, faultf(ErrBadValue, "Invalid call flag: %q", part)
		}
	}
	return f, nil
}

package vm

import "testing"

func TestCallFlagsString(t *testing.T) {
	cases := []struct {
		f    CallFlags
		want string
	}{
		{NoCallFlags, "None"},
		{AllCallFlags, "All"},
		{ReadOnly, "ReadOnly"},
		{States | AllowNotify, "AllowNotify, States"},
		{ReadStates | AllowNotify, "ReadStates, AllowNotify"},
		{0x80, "CallFlags(?)"},
	}
	for _, c := range cases {
		if got := c.f.String(); got != c.want {
			t.Errorf("CallFlags(%#x).String() = %q, want %q", uint8(c.f), got, c.want)
		}
	}
	if !AllCallFlags.Has(ReadOnly) || ReadOnly.Has(WriteStates) {
		t.Error("Has is wrong")
	}
}

func TestLoadScriptWithFlags(t *testing.T) {
	e := New(nil, DefaultLimits)
	ectx, err := e.LoadScriptWithFlags(MustNewScript(nil), -1, 0, ReadOnly)
	if err != nil {
		t.Fatal(err)
	}
	if ectx.CallFlags() != ReadOnly {
		t.Errorf("flags = %s, want ReadOnly", ectx.CallFlags())
	}
	if got := ectx.Clone(0).CallFlags(); got != ReadOnly {
		t.Errorf("clone flags = %s, want ReadOnly", got)
	}
}

func TestParseCallFlags(t *testing.T) {
	cases := []struct {
		s    string
		want CallFlags
		ok   bool
	}{
		{"All", AllCallFlags, true},
		{"None", NoCallFlags, true},
		{"ReadStates, AllowNotify", ReadStates | AllowNotify, true},
		{"AllowNotify, States", States | AllowNotify, true},
		{"5", ReadOnly, true},
		{"16", 0, false},
		{"Everything", 0, false},
	}
	for _, c := range cases {
		got, err := ParseCallFlags(c.s)
		if (err == nil) != c.ok {
			t.Errorf("ParseCallFlags(%q) error = %v, want ok %v", c.s, err, c.ok)
			continue
		}
		if c.ok && got != c.want {
			t.Errorf("ParseCallFlags(%q) = %s, want %s", c.s, got, c.want)
		}
	}
	for f := NoCallFlags; f <= AllCallFlags; f++ {
		got, err := ParseCallFlags(f.String())
		if err != nil || got != f {
			t.Errorf("ParseCallFlags(%q) = %s, %v", f.String(), got, err)
		}
	}
}

package vm

import (
	"testing"

	"github.com/onyx-protocol/neovm/protocol/vm/stackitem"
)

func TestCompoundOps(t *testing.T) {
	runCases(t, []progCase{
		// The top of the stack becomes the first element.
		{prog: "1 2 3 3 PACK", want: []interface{}{[]interface{}{3, 2, 1}}},
		{prog: "1 2 3 3 PACK UNPACK", want: []interface{}{1, 2, 3, 3}},
		{prog: "1 2 2 PACKSTRUCT", want: []interface{}{[]interface{}{2, 1}}},
		{prog: "1 2 3 PACK", wantErr: ErrUnhandled},
		{prog: "'v' 'k' 1 PACKMAP", want: []interface{}{[]interface{}{[]interface{}{"k", "v"}}}},
		{prog: "'v' 'k' 1 PACKMAP 'k' PICKITEM", want: []interface{}{"v"}},
		{prog: "'v' 'k' 1 PACKMAP UNPACK", want: []interface{}{"v", "k", 1}},

		{prog: "3 NEWARRAY", want: []interface{}{[]interface{}{nil, nil, nil}}},
		{prog: "2 NEWARRAY_T:Integer", want: []interface{}{[]interface{}{0, 0}}},
		{prog: "2 NEWARRAY_T:Boolean", want: []interface{}{[]interface{}{false, false}}},
		{prog: "2 NEWARRAY_T:ByteString", want: []interface{}{[]interface{}{"", ""}}},
		{prog: "1 NEWARRAY_T:Any", want: []interface{}{[]interface{}{nil}}},
		{prog: "2 NEWSTRUCT", want: []interface{}{[]interface{}{nil, nil}}},
		{prog: "-1 NEWARRAY", wantErr: ErrStackOverflow},

		{prog: "NEWARRAY0 SIZE", want: []interface{}{0}},
		{prog: "'abc' SIZE", want: []interface{}{3}},
		{prog: "NEWMAP SIZE", want: []interface{}{0}},
		{prog: "256 SIZE", want: []interface{}{2}},

		{prog: "2 NEWARRAY 1 HASKEY", want: []interface{}{true}},
		{prog: "2 NEWARRAY 2 HASKEY", want: []interface{}{false}},
		{prog: "NEWMAP 1 HASKEY", want: []interface{}{false}},
		{prog: "'abc' 2 HASKEY", want: []interface{}{true}},
		{prog: "2 NEWARRAY -1 HASKEY", wantErr: ErrUnhandled},

		{prog: "'v' 'k' 1 PACKMAP KEYS", want: []interface{}{[]interface{}{"k"}}},
		{prog: "'v' 'k' 1 PACKMAP VALUES", want: []interface{}{[]interface{}{"v"}}},
		{prog: "1 2 2 PACK VALUES", want: []interface{}{[]interface{}{2, 1}}},

		{prog: "NEWARRAY0 DUP 5 APPEND", want: []interface{}{[]interface{}{5}}},
		{prog: "2 NEWARRAY DUP 0 7 SETITEM", want: []interface{}{[]interface{}{7, nil}}},
		{prog: "NEWMAP DUP 1 'int' SETITEM DUP 0x01 'bytes' SETITEM SIZE", want: []interface{}{2}},
		{prog: "NEWMAP DUP 1 'a' SETITEM DUP 1 'b' SETITEM", want: []interface{}{[]interface{}{[]interface{}{1, "b"}}}},
		{prog: "NEWMAP DUP NEWARRAY0 1 SETITEM", wantErr: ErrUnhandled},
		{prog: "1 2 3 3 PACK DUP REVERSEITEMS", want: []interface{}{[]interface{}{1, 2, 3}}},
		{prog: "1 2 3 3 PACK DUP 0 REMOVE", want: []interface{}{[]interface{}{2, 1}}},
		{prog: "'v' 'k' 1 PACKMAP DUP 'k' REMOVE", want: []interface{}{[]interface{}{}}},
		{prog: "1 2 2 PACK DUP CLEARITEMS", want: []interface{}{[]interface{}{}}},
		{prog: "1 2 2 PACK POPITEM", want: []interface{}{1}},
		{prog: "NEWARRAY0 POPITEM", wantErr: ErrUnhandled},

		{prog: "2 NEWBUFFER DUP 0 255 SETITEM", want: []interface{}{[]byte{0xff, 0}}},
		{prog: "2 NEWBUFFER DUP 1 -1 SETITEM", want: []interface{}{[]byte{0, 0xff}}},
		{prog: "2 NEWBUFFER DUP 0 256 SETITEM", wantErr: ErrUnhandled},
		{prog: "0x0102 1 PICKITEM", want: []interface{}{2}},
		{prog: "3 NEWBUFFER DUP 0 9 SETITEM DUP REVERSEITEMS", want: []interface{}{[]byte{0, 0, 9}}},
	})
}

func TestPickItemOutOfRange(t *testing.T) {
	e := run(t, "1 NEWARRAY 1 PICKITEM", DefaultLimits)
	if e.State() != StateFault {
		t.Fatalf("state %s, want FAULT", e.State())
	}
	want := stackitem.ByteString("The index of VMArray is out of range, 1/[0, 1).")
	if got := e.UncaughtException(); got != want {
		t.Errorf("uncaught = %q, want %q", got, want)
	}

	e = run(t, "NEWMAP 1 PICKITEM", DefaultLimits)
	want = stackitem.ByteString("Key Integer(1) not found in Map.")
	if got := e.UncaughtException(); got != want {
		t.Errorf("uncaught = %q, want %q", got, want)
	}
}

// Structs are copied when stored into a container, so later
// changes to the original are not seen through the container.
func TestStructStoredByValue(t *testing.T) {
	runCases(t, []progCase{
		{
			prog: "NEWARRAY0 NEWSTRUCT0 OVER OVER APPEND 1 APPEND",
			want: []interface{}{[]interface{}{[]interface{}{}}},
		},
		{
			prog: "NEWARRAY0 NEWARRAY0 OVER OVER APPEND 1 APPEND",
			want: []interface{}{[]interface{}{[]interface{}{1}}},
		},
	})
}

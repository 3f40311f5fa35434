package vmutil

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"testing"

	"github.com/onyx-protocol/neovm/errors"
	"github.com/onyx-protocol/neovm/protocol/vm"
	"github.com/onyx-protocol/neovm/protocol/vm/stackitem"
)

func TestAddInt64(t *testing.T) {
	cases := []struct {
		num     int64
		wantHex string
	}{
		{0, "10"},
		{1, "11"},
		{16, "20"},
		{-1, "0f"},
		{17, "0011"},
		{-2, "00fe"},
		{127, "007f"},
		{128, "018000"},
		{255, "01ff00"},
		{256, "010001"},
		{65535, "02ffff0000"},
		{65536, "0200000100"},
		{-65536, "020000ffff"},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("adding %d", c.num), func(t *testing.T) {
			b := NewBuilder()
			b.AddInt64(c.num)
			prog, err := b.Build()
			if err != nil {
				t.Fatal(err)
			}
			want, err := hex.DecodeString(c.wantHex)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(prog, want) {
				t.Errorf("got %x, want %x", prog, want)
			}
		})
	}
}

func TestAddBigInt(t *testing.T) {
	v := new(big.Int).Lsh(big.NewInt(1), 64)
	prog, err := NewBuilder().AddBigInt(v).Build()
	if err != nil {
		t.Fatal(err)
	}
	if want := "0400000000000000000100000000000000"; hex.EncodeToString(prog) != want {
		t.Errorf("got %x, want %s", prog, want)
	}

	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
	_, err = NewBuilder().AddBigInt(tooBig).AddOp(vm.OP_NOP).Build()
	if errors.Root(err) != stackitem.ErrTooBig {
		t.Errorf("2^256: got error %v, want %v", err, stackitem.ErrTooBig)
	}
}

func TestAddJump(t *testing.T) {
	cases := []struct {
		name    string
		wantHex string
		fn      func(t *testing.T, b *Builder)
	}{
		{
			"single jump single target not yet defined",
			"230600000021",
			func(t *testing.T, b *Builder) {
				target := b.NewJumpTarget()
				b.AddJump(vm.OP_JMP, target)
				b.AddOp(vm.OP_NOP)
				b.SetJumpTarget(target)
			},
		},
		{
			"single jump single target already defined",
			"2123ffffffff",
			func(t *testing.T, b *Builder) {
				target := b.NewJumpTarget()
				b.SetJumpTarget(target)
				b.AddOp(vm.OP_NOP)
				b.AddJump(vm.OP_JMP, target)
			},
		},
		{
			"two jumps single target not yet defined",
			"230c00000021230600000021",
			func(t *testing.T, b *Builder) {
				target := b.NewJumpTarget()
				b.AddJump(vm.OP_JMP, target)
				b.AddOp(vm.OP_NOP)
				b.AddJump(vm.OP_JMP, target)
				b.AddOp(vm.OP_NOP)
				b.SetJumpTarget(target)
			},
		},
		{
			"two jumps single target already defined",
			"2123ffffffff2123f9ffffff",
			func(t *testing.T, b *Builder) {
				target := b.NewJumpTarget()
				b.SetJumpTarget(target)
				b.AddOp(vm.OP_NOP)
				b.AddJump(vm.OP_JMP, target)
				b.AddOp(vm.OP_NOP)
				b.AddJump(vm.OP_JMP, target)
			},
		},
		{
			"two jumps single target, one not yet defined, one already defined",
			"2306000000212123ffffffff",
			func(t *testing.T, b *Builder) {
				target := b.NewJumpTarget()
				b.AddJump(vm.OP_JMP, target)
				b.AddOp(vm.OP_NOP)
				b.SetJumpTarget(target)
				b.AddOp(vm.OP_NOP)
				b.AddJump(vm.OP_JMP, target)
			},
		},
		{
			"two jumps, two targets, not yet defined",
			"230c0000002123070000002121",
			func(t *testing.T, b *Builder) {
				target1 := b.NewJumpTarget()
				b.AddJump(vm.OP_JMP, target1)
				b.AddOp(vm.OP_NOP)
				target2 := b.NewJumpTarget()
				b.AddJump(vm.OP_JMP, target2)
				b.AddOp(vm.OP_NOP)
				b.SetJumpTarget(target1)
				b.AddOp(vm.OP_NOP)
				b.SetJumpTarget(target2)
			},
		},
		{
			"short forms are widened",
			"250600000021350000000021",
			func(t *testing.T, b *Builder) {
				target := b.NewJumpTarget()
				b.AddJump(vm.OP_JMPIF, target)
				b.AddOp(vm.OP_NOP)
				b.SetJumpTarget(target)
				b.AddCall(target)
				b.AddOp(vm.OP_NOP)
			},
		},
		{
			"try with catch only",
			"3c0a000000000000002121",
			func(t *testing.T, b *Builder) {
				catch := b.NewJumpTarget()
				b.AddTry(catch, 0)
				b.AddOp(vm.OP_NOP)
				b.SetJumpTarget(catch)
				b.AddOp(vm.OP_NOP)
			},
		},
		{
			"pointer and endtry",
			"0a0a0000003e05000000",
			func(t *testing.T, b *Builder) {
				end := b.NewJumpTarget()
				b.AddPointer(end)
				b.AddJump(vm.OP_ENDTRY, end)
				b.SetJumpTarget(end)
			},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := NewBuilder()
			c.fn(t, b)
			prog, err := b.Build()
			if err != nil {
				t.Fatal(err)
			}
			want, err := hex.DecodeString(c.wantHex)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(prog, want) {
				t.Errorf("got %x, want %x", prog, want)
			}
		})
	}
}

func TestBuildErrors(t *testing.T) {
	b := NewBuilder()
	b.AddJump(vm.OP_JMP, b.NewJumpTarget())
	_, err := b.Build()
	if errors.Root(err) != ErrUnresolvedJump {
		t.Errorf("unset target: got error %v, want %v", err, ErrUnresolvedJump)
	}

	b = NewBuilder()
	b.AddJump(vm.OP_NOP, b.NewJumpTarget())
	_, err = b.Build()
	if errors.Root(err) != ErrNotJump {
		t.Errorf("NOP: got error %v, want %v", err, ErrNotJump)
	}
}

func TestBuiltTryRuns(t *testing.T) {
	b := NewBuilder()
	catch, end := b.NewJumpTarget(), b.NewJumpTarget()
	b.AddTry(catch, 0)
	b.AddData([]byte("x")).AddOp(vm.OP_THROW)
	b.AddJump(vm.OP_ENDTRY, end)
	b.SetJumpTarget(catch)
	b.AddJump(vm.OP_ENDTRY, end)
	b.SetJumpTarget(end)
	b.AddInt64(9).AddBool(true).AddNull()
	prog, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	e := vm.New(nil, vm.DefaultLimits)
	_, err = e.LoadScript(vm.MustNewScript(prog), -1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if state := e.Execute(); state != vm.StateHalt {
		t.Fatalf("state %s: %v", state, e.FaultError())
	}
	got := e.ResultStack().Items()
	if len(got) != 4 {
		t.Fatalf("result %v, want 4 items", got)
	}
	if got[0] != stackitem.ByteString("x") {
		t.Errorf("result[0] = %v, want the caught item", got[0])
	}
	if n, err := got[1].Integer(); err != nil || n.Int64() != 9 {
		t.Errorf("result[1] = %v, want 9", got[1])
	}
	if got[2] != stackitem.Boolean(true) {
		t.Errorf("result[2] = %v, want true", got[2])
	}
	if !stackitem.IsNull(got[3]) {
		t.Errorf("result[3] = %v, want null", got[3])
	}
}

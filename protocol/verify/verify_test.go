package verify

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/stretchr/testify/require"

	"github.com/onyx-protocol/neovm/errors"
	"github.com/onyx-protocol/neovm/log"
	"github.com/onyx-protocol/neovm/metrics"
	"github.com/onyx-protocol/neovm/protocol/interop"
	"github.com/onyx-protocol/neovm/protocol/vm"
	"github.com/onyx-protocol/neovm/protocol/vmutil"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func mustAssemble(t testing.TB, src string) []byte {
	prog, err := vm.Assemble(src)
	require.NoError(t, err)
	return prog
}

func TestVerify(t *testing.T) {
	priv, pub := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{7}, 32))
	sigProg, err := vmutil.CheckSigProgram(pub.SerializeCompressed())
	require.NoError(t, err)
	msg := []byte("block 12")
	hash := sha256.Sum256(msg)
	sig := ecdsa.Sign(priv, hash[:]).Serialize()

	jobs := []Job{
		{Script: sigProg, Args: [][]byte{sig, msg}},
		{Script: sigProg, Args: [][]byte{sig, []byte("block 13")}},
		{Script: mustAssemble(t, "1 2 ADD")},
		{Script: mustAssemble(t, "0")},
		{Script: mustAssemble(t, "1 1")},
		{Script: mustAssemble(t, "1 0 DIV")},
		{Script: []byte{0xff}},
		{
			Script: mustAssemble(t, fmt.Sprintf("NEWARRAY0 'ev' SYSCALL:%d 1", interop.ID(interop.RuntimeNotify))),
			Flags:  vm.AllowNotify,
		},
	}

	v := New(vm.DefaultLimits, nil)
	v.Parallelism = 3
	results, err := v.Verify(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, results, len(jobs))

	wantOK := []bool{true, false, true, false, false, false, false, true}
	for i, r := range results {
		require.Equal(t, wantOK[i], r.OK(), "job %d: state %s fault %v", i, r.State, r.Fault)
	}
	require.Equal(t, vm.StateHalt, results[1].State)
	require.Equal(t, vm.StateFault, results[5].State)
	require.Equal(t, vm.ErrUnhandled, errors.Root(results[5].Fault))
	require.Equal(t, vm.ErrInvalidOpcode, errors.Root(results[6].Fault))
	require.Len(t, results[7].Notifications, 1)
	require.Equal(t, "ev", results[7].Notifications[0].Name)

	require.Contains(t, metrics.Elapsed(), "elapsed.verify.(*Verifier).Verify")
}

func TestVerifyAll(t *testing.T) {
	v := New(vm.DefaultLimits, nil)
	ok := Job{Script: mustAssemble(t, "PUSHT")}

	require.NoError(t, v.VerifyAll(context.Background(), []Job{ok, ok, ok}))

	err := v.VerifyAll(context.Background(), []Job{ok, {Script: mustAssemble(t, "ABORT")}, ok})
	require.Equal(t, ErrFailed, errors.Root(err))
	require.Contains(t, errors.Detail(err), "job 1: state FAULT")
}

func TestVerifyCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	v := New(vm.DefaultLimits, nil)
	_, err := v.Verify(ctx, []Job{{Script: mustAssemble(t, "PUSHT")}})
	require.Equal(t, context.Canceled, err)
}

func TestVerifyContractCall(t *testing.T) {
	callee := vm.MustNewScript(mustAssemble(t, "INITSLOT:0,1 LDARG0 10 GT RET"))
	store := interop.NewMemStore()
	store.Put(&interop.Contract{Script: callee, Methods: map[string]int{"big": 0}})

	v := New(vm.DefaultLimits, store)
	var jobs []Job
	for _, n := range []int64{5, 50} {
		prog, err := vmutil.ContractCallProgram(callee.Hash(), "big", vm.ReadOnly, n)
		require.NoError(t, err)
		jobs = append(jobs, Job{Script: prog, Flags: vm.ReadOnly})
	}
	results, err := v.Verify(context.Background(), jobs)
	require.NoError(t, err)
	require.False(t, results[0].OK())
	require.True(t, results[1].OK())
}

func TestScriptCache(t *testing.T) {
	c := newScriptCache(2)
	a, b, d := []byte{0x11}, []byte{0x12}, []byte{0x13}

	s1, err := c.lookup(a)
	require.NoError(t, err)
	s2, err := c.lookup(append([]byte(nil), a...))
	require.NoError(t, err)
	require.Same(t, s1, s2)

	_, err = c.lookup(b)
	require.NoError(t, err)
	_, err = c.lookup(d)
	require.NoError(t, err)
	require.Equal(t, 2, c.len())

	// a was least recently used and has been evicted.
	s3, err := c.lookup(a)
	require.NoError(t, err)
	require.NotSame(t, s1, s3)

	_, err = c.lookup([]byte{0x0c})
	require.Equal(t, vm.ErrShortProgram, errors.Root(err))
	require.Equal(t, 2, c.len())
}

func TestSharedScriptParallel(t *testing.T) {
	prog := mustAssemble(t, "0 $l INC DUP 100 LT JMPIF:$l 100 NUMEQUAL")
	jobs := make([]Job, 64)
	for i := range jobs {
		jobs[i] = Job{Script: prog}
	}
	v := New(vm.DefaultLimits, nil)
	v.Parallelism = 8
	require.NoError(t, v.VerifyAll(context.Background(), jobs))
	require.Equal(t, 1, v.cache.len())
}

package vmutil

import (
	"math/big"

	"github.com/onyx-protocol/neovm/errors"
	"github.com/onyx-protocol/neovm/protocol/interop"
	"github.com/onyx-protocol/neovm/protocol/vm"
	"github.com/onyx-protocol/neovm/protocol/vm/stackitem"
)

// PubkeySize is the length of a compressed secp256k1 public key.
const PubkeySize = 33

var (
	ErrBadValue       = errors.New("bad value")
	ErrMultisigFormat = errors.New("bad multisig program format")
	ErrSigFormat      = errors.New("bad signature program format")
)

// IsUnspendable reports whether prog begins with ABORT and so can
// never halt.
func IsUnspendable(prog []byte) bool {
	return len(prog) > 0 && prog[0] == byte(vm.OP_ABORT)
}

// Invocation returns the program that supplies arguments to a
// signature program: the signatures in key order, then the message.
func Invocation(msg []byte, sigs ...[]byte) ([]byte, error) {
	builder := NewBuilder()
	for _, sig := range sigs {
		builder.AddData(sig)
	}
	builder.AddData(msg)
	return builder.Build()
}

// CheckSigProgram returns a program that halts with true when
// invoked with a valid signature by pubkey and the signed message.
// The result is: <pubkey> SWAP SYSCALL System.Crypto.CheckSecp256k1
func CheckSigProgram(pubkey []byte) ([]byte, error) {
	if len(pubkey) != PubkeySize {
		return nil, errors.WithDetailf(ErrBadValue, "pubkey length %d", len(pubkey))
	}
	builder := NewBuilder()
	builder.AddData(pubkey)   // stack is now [... SIG MSG PUB]
	builder.AddOp(vm.OP_SWAP) // stack is now [... SIG PUB MSG]
	builder.AddSyscall(interop.ID(interop.CryptoCheckSecp256k1))
	return builder.Build()
}

func ParseCheckSigProgram(prog []byte) ([]byte, error) {
	insts, err := parseProgram(prog)
	if err != nil {
		return nil, err
	}
	if len(insts) != 3 {
		return nil, errors.WithDetailf(ErrSigFormat, "%d instructions", len(insts))
	}
	if !isSyscall(insts[2], interop.CryptoCheckSecp256k1) {
		return nil, errors.WithDetail(ErrSigFormat, "no CheckSecp256k1 syscall")
	}
	if insts[0].Op != vm.OP_PUSHDATA1 || len(insts[0].Operand) != PubkeySize || insts[1].Op != vm.OP_SWAP {
		return nil, errors.WithDetail(ErrSigFormat, "bad pubkey push")
	}
	return insts[0].Operand, nil
}

// MultiSigProgram returns a program that halts with true when
// invoked with nrequired valid signatures by distinct keys among
// pubkeys, given in the order of pubkeys, and the signed message.
// The result is:
//
//	<nrequired+1> REVERSEN <nrequired> PACK
//	<pubkey>... <npubkeys> PACK ROT
//	SYSCALL System.Crypto.CheckMultisigSecp256k1
//
// with the pubkeys pushed last first so PACK restores their order.
func MultiSigProgram(pubkeys [][]byte, nrequired int) ([]byte, error) {
	err := checkMultiSigParams(int64(nrequired), int64(len(pubkeys)))
	if err != nil {
		return nil, err
	}
	builder := NewBuilder()
	builder.AddInt64(int64(nrequired) + 1).AddOp(vm.OP_REVERSEN) // stack is now [... MSG SIG SIG]
	builder.AddInt64(int64(nrequired)).AddOp(vm.OP_PACK)         // stack is now [... MSG SIGS]
	for i := len(pubkeys) - 1; i >= 0; i-- {
		if len(pubkeys[i]) != PubkeySize {
			return nil, errors.WithDetailf(ErrBadValue, "pubkey %d length %d", i, len(pubkeys[i]))
		}
		builder.AddData(pubkeys[i])
	}
	builder.AddInt64(int64(len(pubkeys))).AddOp(vm.OP_PACK) // stack is now [... MSG SIGS PUBS]
	builder.AddOp(vm.OP_ROT)                                // stack is now [... SIGS PUBS MSG]
	builder.AddSyscall(interop.ID(interop.CryptoCheckMultisig))
	return builder.Build()
}

func ParseMultiSigProgram(prog []byte) ([][]byte, int, error) {
	insts, err := parseProgram(prog)
	if err != nil {
		return nil, 0, err
	}
	if len(insts) < 8 {
		return nil, 0, vm.ErrShortProgram
	}
	if !isSyscall(insts[len(insts)-1], interop.CryptoCheckMultisig) {
		return nil, 0, errors.WithDetail(ErrMultisigFormat, "no CheckMultisigSecp256k1 syscall")
	}
	if insts[1].Op != vm.OP_REVERSEN || insts[3].Op != vm.OP_PACK ||
		insts[len(insts)-3].Op != vm.OP_PACK || insts[len(insts)-2].Op != vm.OP_ROT {
		return nil, 0, errors.WithDetail(ErrMultisigFormat, "unexpected opcode")
	}
	nrequired, err := pushedInt(insts[2])
	if err != nil {
		return nil, 0, errors.Wrap(ErrMultisigFormat, "parsing nrequired")
	}
	npubkeys, err := pushedInt(insts[len(insts)-4])
	if err != nil {
		return nil, 0, errors.Wrap(ErrMultisigFormat, "parsing npubkeys")
	}
	if int(npubkeys) != len(insts)-8 {
		return nil, 0, vm.ErrShortProgram
	}
	err = checkMultiSigParams(nrequired, npubkeys)
	if err != nil {
		return nil, 0, err
	}
	if n, err := pushedInt(insts[0]); err != nil || n != nrequired+1 {
		return nil, 0, errors.WithDetail(ErrMultisigFormat, "bad REVERSEN count")
	}

	pubkeys := make([][]byte, 0, npubkeys)
	for i := len(insts) - 5; i >= 4; i-- {
		if insts[i].Op != vm.OP_PUSHDATA1 || len(insts[i].Operand) != PubkeySize {
			return nil, 0, errors.WithDetailf(ErrMultisigFormat, "pubkey at instruction %d", i)
		}
		pubkeys = append(pubkeys, insts[i].Operand)
	}
	return pubkeys, int(nrequired), nil
}

// ContractCallProgram returns a program calling method of the
// contract with the given script hash. Each arg must be an int64,
// *big.Int, []byte, string, bool or nil.
func ContractCallProgram(hash []byte, method string, flags vm.CallFlags, args ...interface{}) ([]byte, error) {
	builder := NewBuilder()
	// PACK takes the top item first, so push the last argument first.
	for i := len(args) - 1; i >= 0; i-- {
		switch a := args[i].(type) {
		case int64:
			builder.AddInt64(a)
		case int:
			builder.AddInt64(int64(a))
		case *big.Int:
			builder.AddBigInt(a)
		case []byte:
			builder.AddData(a)
		case string:
			builder.AddData([]byte(a))
		case bool:
			builder.AddBool(a)
		case nil:
			builder.AddNull()
		default:
			return nil, errors.WithDetailf(ErrBadValue, "argument %d has type %T", i, a)
		}
	}
	builder.AddInt64(int64(len(args))).AddOp(vm.OP_PACK)
	builder.AddInt64(int64(flags))
	builder.AddData([]byte(method))
	builder.AddData(hash)
	builder.AddSyscall(interop.ID(interop.ContractCall))
	return builder.Build()
}

func parseProgram(prog []byte) ([]vm.Instruction, error) {
	var insts []vm.Instruction
	for ip := 0; ip < len(prog); {
		inst, err := vm.ParseInstruction(prog, ip)
		if err != nil {
			return nil, err
		}
		insts = append(insts, inst)
		ip += inst.Size
	}
	return insts, nil
}

func isSyscall(inst vm.Instruction, name string) bool {
	return inst.Op == vm.OP_SYSCALL && inst.TokenU32() == interop.ID(name)
}

func pushedInt(inst vm.Instruction) (int64, error) {
	switch {
	case inst.Op >= vm.OP_PUSHM1 && inst.Op <= vm.OP_PUSH16:
		return int64(inst.Op) - int64(vm.OP_PUSH0), nil
	case inst.Op <= vm.OP_PUSHINT256:
		v := stackitem.BytesToInt(inst.Operand)
		if !v.IsInt64() {
			return 0, ErrBadValue
		}
		return v.Int64(), nil
	}
	return 0, errors.WithDetailf(ErrBadValue, "%s pushes no integer", inst.Op)
}

func checkMultiSigParams(nrequired, npubkeys int64) error {
	if nrequired < 0 {
		return errors.WithDetail(ErrBadValue, "negative quorum")
	}
	if npubkeys < 0 {
		return errors.WithDetail(ErrBadValue, "negative pubkey count")
	}
	if nrequired > npubkeys {
		return errors.WithDetail(ErrBadValue, "quorum too big")
	}
	if nrequired == 0 {
		return errors.WithDetail(ErrBadValue, "quorum empty")
	}
	return nil
}

package interop

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/fastsha256"
	"golang.org/x/crypto/ripemd160"
	"golang.org/x/crypto/sha3"

	"github.com/onyx-protocol/neovm/errors"
	"github.com/onyx-protocol/neovm/protocol/vm"
	"github.com/onyx-protocol/neovm/protocol/vm/stackitem"
)

func cryptoSha256(e *vm.Engine, h *Host) error {
	data, err := popBytes(e)
	if err != nil {
		return err
	}
	sum := fastsha256.Sum256(data)
	e.Push(stackitem.NewByteString(sum[:]))
	return nil
}

func cryptoRipemd160(e *vm.Engine, h *Host) error {
	data, err := popBytes(e)
	if err != nil {
		return err
	}
	hasher := ripemd160.New()
	hasher.Write(data)
	e.Push(stackitem.NewByteString(hasher.Sum(nil)))
	return nil
}

func cryptoKeccak256(e *vm.Engine, h *Host) error {
	data, err := popBytes(e)
	if err != nil {
		return err
	}
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(data)
	e.Push(stackitem.NewByteString(hasher.Sum(nil)))
	return nil
}

// cryptoCheckSecp256k1 pops a message, a public key and a DER
// signature, and pushes whether the signature is valid for the
// SHA-256 of the message. Malformed keys and signatures verify
// as false.
func cryptoCheckSecp256k1(e *vm.Engine, h *Host) error {
	msg, err := popBytes(e)
	if err != nil {
		return err
	}
	pubkey, err := popBytes(e)
	if err != nil {
		return err
	}
	sig, err := popBytes(e)
	if err != nil {
		return err
	}
	e.Push(stackitem.Boolean(CheckSecp256k1(msg, pubkey, sig)))
	return nil
}

// cryptoCheckMultisig pops a message, an array of public keys and
// an array of signatures. It pushes true when every signature is
// valid for a distinct key, signatures appearing in key order.
func cryptoCheckMultisig(e *vm.Engine, h *Host) error {
	msg, err := popBytes(e)
	if err != nil {
		return err
	}
	pubkeys, err := popArray(e)
	if err != nil {
		return err
	}
	sigs, err := popArray(e)
	if err != nil {
		return err
	}
	if len(pubkeys) == 0 {
		return errors.WithDetail(vm.ErrBadValue, "No public keys")
	}
	if len(sigs) == 0 || len(sigs) > len(pubkeys) {
		return errors.WithDetailf(vm.ErrBadValue, "Bad signature count: %d of %d", len(sigs), len(pubkeys))
	}
	ok := true
	for i, j := 0, 0; ok && i < len(sigs); {
		pk, err := pubkeys[j].Bytes()
		if err != nil {
			return err
		}
		sig, err := sigs[i].Bytes()
		if err != nil {
			return err
		}
		if CheckSecp256k1(msg, pk, sig) {
			i++
		}
		j++
		// Fail once the remaining keys cannot cover the
		// remaining signatures.
		if len(sigs)-i > len(pubkeys)-j {
			ok = false
		}
	}
	e.Push(stackitem.Boolean(ok))
	return nil
}

// CheckSecp256k1 reports whether sig, DER-encoded, is a valid
// signature by pubkey of SHA-256(msg).
func CheckSecp256k1(msg, pubkey, sig []byte) bool {
	pub, err := btcec.ParsePubKey(pubkey)
	if err != nil {
		return false
	}
	s, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	hash := fastsha256.Sum256(msg)
	return s.Verify(hash[:], pub)
}

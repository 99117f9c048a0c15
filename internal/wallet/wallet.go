package wallet

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/cosmos/go-bip39"
)

// SecretCoinType is the SLIP-44 coin type registered for Secret Network.
const SecretCoinType = 529

// HDPath is the account path Secret Network wallets use for the first key
// of a mnemonic: m/44'/529'/0'/0/0.
var HDPath = []uint32{
	hdkeychain.HardenedKeyStart + 44,
	hdkeychain.HardenedKeyStart + SecretCoinType,
	hdkeychain.HardenedKeyStart + 0,
	0,
	0,
}

type KeyDerivationError struct {
	Err error
}

func (e *KeyDerivationError) Error() string {
	return fmt.Sprintf("could not get signing pen: %v", e.Err)
}

func (e *KeyDerivationError) Unwrap() error {
	return e.Err
}

var (
	ErrEmptyMnemonic   = errors.New("mnemonic is empty")
	ErrInvalidMnemonic = errors.New("mnemonic is not a valid bip39 phrase")
)

// Wallet wraps a single secp256k1 keypair and the account address derived
// from it.
type Wallet struct {
	priv    *btcec.PrivateKey
	pub     []byte
	address string
}

// FromMnemonic derives the key at HDPath from a BIP-39 phrase. Words may be
// separated by any run of whitespace.
func FromMnemonic(mnemonic, prefix string) (*Wallet, error) {
	phrase := strings.Join(strings.Fields(mnemonic), " ")
	if phrase == "" {
		return nil, &KeyDerivationError{Err: ErrEmptyMnemonic}
	}
	if !bip39.IsMnemonicValid(phrase) {
		return nil, &KeyDerivationError{Err: ErrInvalidMnemonic}
	}
	seed, err := bip39.NewSeedWithErrorChecking(phrase, "")
	if err != nil {
		return nil, &KeyDerivationError{Err: err}
	}

	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, &KeyDerivationError{Err: err}
	}
	for _, index := range HDPath {
		key, err = key.Derive(index)
		if err != nil {
			return nil, &KeyDerivationError{Err: err}
		}
	}
	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, &KeyDerivationError{Err: err}
	}

	pub := priv.PubKey().SerializeCompressed()
	addr, err := DeriveAddress(pub, prefix)
	if err != nil {
		return nil, &KeyDerivationError{Err: err}
	}
	return &Wallet{priv: priv, pub: pub, address: addr}, nil
}

func (w *Wallet) Address() string {
	return w.address
}

// PubKey returns the 33-byte compressed public key.
func (w *Wallet) PubKey() []byte {
	out := make([]byte, len(w.pub))
	copy(out, w.pub)
	return out
}

// Sign hashes msg with sha256 and returns the 64-byte r||s signature in the
// low-S form Cosmos chains accept.
func (w *Wallet) Sign(msg []byte) ([]byte, error) {
	hash := sha256.Sum256(msg)
	sig, err := ecdsa.SignCompact(w.priv, hash[:], true)
	if err != nil {
		return nil, err
	}
	// Drop the recovery header byte.
	return sig[1:], nil
}

func (w *Wallet) Verify(msg, sig []byte) bool {
	return Verify(w.pub, msg, sig)
}

// Verify checks a 64-byte r||s signature over sha256(msg) against a
// compressed public key.
func Verify(pubKey, msg, sig []byte) bool {
	if len(sig) != 64 {
		return false
	}
	pub, err := btcec.ParsePubKey(pubKey)
	if err != nil {
		return false
	}
	var r, s btcec.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow {
		return false
	}
	if overflow := s.SetByteSlice(sig[32:]); overflow {
		return false
	}
	if s.IsOverHalfOrder() {
		return false
	}
	hash := sha256.Sum256(msg)
	return ecdsa.NewSignature(&r, &s).Verify(hash[:], pub)
}

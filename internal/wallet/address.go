package wallet

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"golang.org/x/crypto/ripemd160"
)

const (
	compressedPubKeyLen = 33
	addressLen          = 20
)

// DeriveAddress expects a compressed secp256k1 public key and returns its
// bech32 account address under prefix.
func DeriveAddress(pubKey []byte, prefix string) (string, error) {
	if prefix == "" {
		return "", errors.New("bech32 prefix is not configured")
	}
	if len(pubKey) != compressedPubKeyLen {
		return "", fmt.Errorf("public key must be %d bytes, got %d", compressedPubKeyLen, len(pubKey))
	}

	hash := sha256.Sum256(pubKey)
	rip := ripemd160.New()
	_, _ = rip.Write(hash[:])
	addr := rip.Sum(nil)

	converted, err := bech32.ConvertBits(addr, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(prefix, converted)
}

func ValidateAddress(addr, prefix string) error {
	hrp, data, err := bech32.Decode(addr)
	if err != nil {
		return err
	}
	if hrp != prefix {
		return fmt.Errorf("address prefix %q, want %q", hrp, prefix)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return err
	}
	if len(raw) != addressLen {
		return fmt.Errorf("address payload must be %d bytes, got %d", addressLen, len(raw))
	}
	return nil
}

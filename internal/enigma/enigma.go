// Package enigma encrypts contract queries and executions for Secret Network
// nodes and decrypts their responses.
//
// A session keypair on curve25519 is derived from a random 32-byte seed. For
// every message a fresh nonce is drawn and the AES-SIV key is
// HKDF-SHA256(x25519(sessionPriv, nodePub) || nonce). The wire format is
// nonce(32) || sessionPub(32) || siv(plaintext).
package enigma

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/miscreant/miscreant.go"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

const (
	SeedSize  = 32
	NonceSize = 32
	KeySize   = curve25519.PointSize

	headerSize = NonceSize + KeySize
)

var hkdfSalt = []byte{
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x02, 0x4b, 0xea, 0xd8, 0xdf, 0x69, 0x99,
	0x08, 0x52, 0xc2, 0x02, 0xdb, 0x0e, 0x00, 0x97,
	0xc1, 0xa1, 0x2e, 0xa6, 0x37, 0xd7, 0xe9, 0x6d,
}

var ErrShortCiphertext = errors.New("ciphertext is shorter than its header")

// KeySource returns the node's transaction encryption public key.
type KeySource interface {
	TxEncryptionKey(ctx context.Context) ([]byte, error)
}

func GenerateSeed() ([]byte, error) {
	seed := make([]byte, SeedSize)
	if _, err := io.ReadFull(rand.Reader, seed); err != nil {
		return nil, err
	}
	return seed, nil
}

type KeyPair struct {
	priv []byte
	pub  []byte
}

func NewKeyPair(seed []byte) (*KeyPair, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("encryption seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	priv := make([]byte, SeedSize)
	copy(priv, seed)
	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return nil, err
	}
	return &KeyPair{priv: priv, pub: pub}, nil
}

func (k *KeyPair) PubKey() []byte {
	out := make([]byte, len(k.pub))
	copy(out, k.pub)
	return out
}

func (k *KeyPair) messageKey(peerPub, nonce []byte) ([]byte, error) {
	if len(peerPub) != KeySize {
		return nil, fmt.Errorf("peer public key must be %d bytes, got %d", KeySize, len(peerPub))
	}
	shared, err := curve25519.X25519(k.priv, peerPub)
	if err != nil {
		return nil, err
	}
	ikm := make([]byte, 0, len(shared)+len(nonce))
	ikm = append(ikm, shared...)
	ikm = append(ikm, nonce...)

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, hkdfSalt, nil), key); err != nil {
		return nil, err
	}
	return key, nil
}

func seal(key, plaintext []byte) ([]byte, error) {
	c, err := miscreant.NewAESCMACSIV(key)
	if err != nil {
		return nil, err
	}
	return c.Seal(nil, plaintext, []byte{})
}

func open(key, ciphertext []byte) ([]byte, error) {
	c, err := miscreant.NewAESCMACSIV(key)
	if err != nil {
		return nil, err
	}
	return c.Open(nil, ciphertext, []byte{})
}

// Utils is the client side of the scheme. The node key is fetched from the
// KeySource on first use and kept for the lifetime of the Utils.
type Utils struct {
	keys   *KeyPair
	source KeySource

	mu      sync.Mutex
	nodeKey []byte
}

func New(seed []byte, source KeySource) (*Utils, error) {
	keys, err := NewKeyPair(seed)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, errors.New("tx encryption key source is nil")
	}
	return &Utils{keys: keys, source: source}, nil
}

func (u *Utils) PubKey() []byte {
	return u.keys.PubKey()
}

func (u *Utils) nodePubKey(ctx context.Context) ([]byte, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.nodeKey != nil {
		return u.nodeKey, nil
	}
	key, err := u.source.TxEncryptionKey(ctx)
	if err != nil {
		return nil, err
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("tx encryption key must be %d bytes, got %d", KeySize, len(key))
	}
	u.nodeKey = key
	return key, nil
}

// Encrypt seals codeHash+msg for the node and returns the wire message and
// the nonce needed to decrypt the node's answer.
func (u *Utils) Encrypt(ctx context.Context, codeHash string, msg []byte) ([]byte, []byte, error) {
	nodeKey, err := u.nodePubKey(ctx)
	if err != nil {
		return nil, nil, err
	}
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, err
	}
	key, err := u.keys.messageKey(nodeKey, nonce)
	if err != nil {
		return nil, nil, err
	}

	plaintext := make([]byte, 0, len(codeHash)+len(msg))
	plaintext = append(plaintext, codeHash...)
	plaintext = append(plaintext, msg...)
	sealed, err := seal(key, plaintext)
	if err != nil {
		return nil, nil, err
	}

	out := make([]byte, 0, headerSize+len(sealed))
	out = append(out, nonce...)
	out = append(out, u.keys.pub...)
	out = append(out, sealed...)
	return out, nonce, nil
}

func (u *Utils) Decrypt(ciphertext, nonce []byte) ([]byte, error) {
	if len(ciphertext) == 0 {
		return nil, nil
	}
	u.mu.Lock()
	nodeKey := u.nodeKey
	u.mu.Unlock()
	if nodeKey == nil {
		return nil, errors.New("decrypt called before any encryption")
	}
	key, err := u.keys.messageKey(nodeKey, nonce)
	if err != nil {
		return nil, err
	}
	return open(key, ciphertext)
}

// Request is a message opened on the node side.
type Request struct {
	Nonce        []byte
	SenderPubKey []byte
	Plaintext    []byte
}

// OpenRequest decrypts a wire message addressed to k.
func (k *KeyPair) OpenRequest(msg []byte) (*Request, error) {
	if len(msg) < headerSize {
		return nil, ErrShortCiphertext
	}
	nonce := msg[:NonceSize]
	sender := msg[NonceSize:headerSize]
	key, err := k.messageKey(sender, nonce)
	if err != nil {
		return nil, err
	}
	plaintext, err := open(key, msg[headerSize:])
	if err != nil {
		return nil, err
	}
	return &Request{Nonce: nonce, SenderPubKey: sender, Plaintext: plaintext}, nil
}

// SealResponse encrypts plaintext under the key of req so the sender can
// open it with its nonce.
func (k *KeyPair) SealResponse(req *Request, plaintext []byte) ([]byte, error) {
	key, err := k.messageKey(req.SenderPubKey, req.Nonce)
	if err != nil {
		return nil, err
	}
	return seal(key, plaintext)
}

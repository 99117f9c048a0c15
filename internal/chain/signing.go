package chain

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"SecretQuery/internal/fees"
	"SecretQuery/internal/models"
)

// Signer signs arbitrary bytes with the account key.
type Signer interface {
	Address() string
	Sign(msg []byte) ([]byte, error)
}

// Encryptor seals contract messages for the node and opens its answers.
type Encryptor interface {
	Encrypt(ctx context.Context, codeHash string, msg []byte) (ciphertext, nonce []byte, err error)
	Decrypt(ciphertext, nonce []byte) ([]byte, error)
}

// SigningClient is an LCDClient that also acts on behalf of one account.
type SigningClient struct {
	*LCDClient
	signer    Signer
	encryptor Encryptor
	fees      fees.Schedule
}

// NewSigningClient reuses lcd, which is usually also the encryptor's key
// source.
func NewSigningClient(lcd *LCDClient, signer Signer, encryptor Encryptor, schedule fees.Schedule) (*SigningClient, error) {
	if lcd == nil {
		return nil, errors.New("lcd client is nil")
	}
	if signer == nil {
		return nil, errors.New("signer is nil")
	}
	if signer.Address() == "" {
		return nil, errors.New("signer has no address")
	}
	if encryptor == nil {
		return nil, errors.New("encryptor is nil")
	}
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	return &SigningClient{
		LCDClient: lcd,
		signer:    signer,
		encryptor: encryptor,
		fees:      schedule,
	}, nil
}

func (c *SigningClient) Address() string {
	return c.signer.Address()
}

func (c *SigningClient) Sign(msg []byte) ([]byte, error) {
	return c.signer.Sign(msg)
}

func (c *SigningClient) Fee(kind fees.Kind) (fees.Fee, error) {
	return c.fees.For(kind)
}

func (c *SigningClient) QueryContractsByCode(ctx context.Context, codeID uint64) ([]models.ContractDescriptor, error) {
	return c.ContractsByCode(ctx, codeID)
}

// QueryContractSmart runs an encrypted smart query against contractAddr and
// decodes the JSON answer into out.
func (c *SigningClient) QueryContractSmart(ctx context.Context, contractAddr string, msg any, out any) error {
	op := "contract " + contractAddr
	codeHash, err := c.ContractCodeHash(ctx, contractAddr)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return &QueryError{Op: op, Err: err}
	}
	encrypted, nonce, err := c.encryptor.Encrypt(ctx, codeHash, payload)
	if err != nil {
		return &QueryError{Op: op, Err: err}
	}
	data, err := c.QuerySmartEncrypted(ctx, contractAddr, encrypted)
	if err != nil {
		return c.decryptError(err, nonce)
	}
	decrypted, err := c.encryptor.Decrypt(data, nonce)
	if err != nil {
		return &QueryError{Op: op, Err: err}
	}
	// The node answers with the base64 of the contract's JSON response.
	raw, err := base64.StdEncoding.DecodeString(string(decrypted))
	if err != nil {
		return &QueryError{Op: op, Err: err}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &QueryError{Op: op, Err: err}
	}
	return nil
}

// Contract failures come back as "encrypted: <base64>: query contract
// failed", sealed under the nonce of the query.
var encryptedErrorRe = regexp.MustCompile(`encrypted: ([A-Za-z0-9+/]+={0,2})`)

// decryptError replaces the sealed part of a node error with its plaintext.
// err is returned unchanged when nothing can be decrypted.
func (c *SigningClient) decryptError(err error, nonce []byte) error {
	var serr *StatusError
	if !errors.As(err, &serr) {
		return err
	}
	m := encryptedErrorRe.FindStringSubmatch(serr.Message)
	if m == nil {
		return err
	}
	sealed, derr := base64.StdEncoding.DecodeString(m[1])
	if derr != nil {
		return err
	}
	plain, derr := c.encryptor.Decrypt(sealed, nonce)
	if derr != nil {
		return err
	}
	serr.Message = strings.Replace(serr.Message, m[0], string(plain), 1)
	return err
}

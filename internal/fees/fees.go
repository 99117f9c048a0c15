package fees

import (
	"fmt"
	"math/big"

	"SecretQuery/internal/models"
)

type Kind string

const (
	Upload Kind = "upload"
	Init   Kind = "init"
	Exec   Kind = "exec"
	Send   Kind = "send"
)

var Kinds = []Kind{Upload, Init, Exec, Send}

type Fee struct {
	Amount []models.Coin `json:"amount" yaml:"amount"`
	Gas    string        `json:"gas" yaml:"gas"`
}

// Schedule maps a transaction kind to the fixed fee attached to it.
type Schedule map[Kind]Fee

// Default is the fee table the wallet tooling has always used on mainnet.
func Default() Schedule {
	return Schedule{
		Upload: fixed("2000000", "uscrt", "2000000"),
		Init:   fixed("500000", "uscrt", "500000"),
		Exec:   fixed("500000", "uscrt", "500000"),
		Send:   fixed("80000", "uscrt", "80000"),
	}
}

func fixed(amount, denom, gas string) Fee {
	return Fee{Amount: []models.Coin{{Amount: amount, Denom: denom}}, Gas: gas}
}

func (s Schedule) For(kind Kind) (Fee, error) {
	fee, ok := s[kind]
	if !ok {
		return Fee{}, fmt.Errorf("no fee configured for %q", kind)
	}
	return fee, nil
}

// Merge returns a copy of s with every entry of override replacing the
// matching kind.
func (s Schedule) Merge(override Schedule) Schedule {
	out := make(Schedule, len(s)+len(override))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

// WithDenom rewrites every coin of the schedule to denom.
func (s Schedule) WithDenom(denom string) Schedule {
	out := make(Schedule, len(s))
	for k, v := range s {
		coins := make([]models.Coin, len(v.Amount))
		for i, c := range v.Amount {
			coins[i] = models.Coin{Amount: c.Amount, Denom: denom}
		}
		out[k] = Fee{Amount: coins, Gas: v.Gas}
	}
	return out
}

func (s Schedule) Validate() error {
	for _, kind := range Kinds {
		fee, ok := s[kind]
		if !ok {
			return fmt.Errorf("fee schedule is missing %q", kind)
		}
		if !isUint(fee.Gas) {
			return fmt.Errorf("fee %q: gas %q is not a positive integer", kind, fee.Gas)
		}
		if len(fee.Amount) == 0 {
			return fmt.Errorf("fee %q: amount is empty", kind)
		}
		for _, c := range fee.Amount {
			if c.Denom == "" || !isUint(c.Amount) {
				return fmt.Errorf("fee %q: invalid coin %s%s", kind, c.Amount, c.Denom)
			}
		}
	}
	return nil
}

func isUint(v string) bool {
	n, ok := new(big.Int).SetString(v, 10)
	return ok && n.Sign() > 0
}

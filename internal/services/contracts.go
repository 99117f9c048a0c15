package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"SecretQuery/internal/models"

	"go.uber.org/zap"
)

var ErrNoContracts = errors.New("no contracts to search")

// ContractClient is the part of the signing client the runner uses.
type ContractClient interface {
	Address() string
	QueryContractsByCode(ctx context.Context, codeID uint64) ([]models.ContractDescriptor, error)
	QueryContractSmart(ctx context.Context, contractAddr string, msg any, out any) error
}

// AliasSearch is an optional smart query run after the listing. An empty
// Contract targets the first listed contract.
type AliasSearch struct {
	Contract string
	Params   models.SearchParams
}

type ContractQueryRunner struct {
	Client ContractClient
	Out    io.Writer
	Logger *zap.Logger
	CodeID uint64
	Search *AliasSearch
}

// Run prints the wallet address, every contract instantiated from CodeID
// and, when Search is set, the alias registry answer.
func (r ContractQueryRunner) Run(ctx context.Context) error {
	if _, err := fmt.Fprintf(r.Out, "Wallet address=%s\n", r.Client.Address()); err != nil {
		return err
	}

	contracts, err := r.Client.QueryContractsByCode(ctx, r.CodeID)
	if err != nil {
		return err
	}
	r.Logger.Debug("contracts listed", zap.Uint64("code_id", r.CodeID), zap.Int("count", len(contracts)))
	if err := printContracts(r.Out, r.CodeID, contracts); err != nil {
		return err
	}

	if r.Search == nil {
		return nil
	}
	target := r.Search.Contract
	if target == "" {
		if len(contracts) == 0 {
			return ErrNoContracts
		}
		target = contracts[0].Address
	}

	var res models.SearchResponse
	query := models.SearchQuery{Search: r.Search.Params}
	if err := r.Client.QueryContractSmart(ctx, target, query, &res); err != nil {
		return err
	}
	out, err := json.Marshal(res)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(r.Out, "Search %s=%q on %s: %s\n", r.Search.Params.SearchType, r.Search.Params.SearchValue, target, out)
	return err
}

func printContracts(w io.Writer, codeID uint64, contracts []models.ContractDescriptor) error {
	if len(contracts) == 0 {
		_, err := fmt.Fprintf(w, "no contracts for code id %d\n", codeID)
		return err
	}
	for _, c := range contracts {
		if _, err := fmt.Fprintf(w, "address=%s code_id=%d creator=%s label=%q\n", c.Address, c.CodeID, c.Creator, c.Label); err != nil {
			return err
		}
	}
	return nil
}

package localnode

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"SecretQuery/internal/enigma"
	"SecretQuery/internal/models"
)

var (
	ErrUnknownCode     = errors.New("code id not found")
	ErrUnknownContract = errors.New("contract not found")
	ErrAliasNotFound   = errors.New("alias not found")
	ErrUnknownSearch   = errors.New("unknown search type")
)

// Code is an uploaded wasm package.
type Code struct {
	ID   uint64
	Hash string
}

// Contract is an alias registry instance.
type Contract struct {
	Address string
	CodeID  uint64
	Creator string
	Label   string
	Aliases []models.AliasAttributes
}

// State is the chain data served by the local node.
type State struct {
	mu        sync.RWMutex
	chainID   string
	height    int64
	codes     map[uint64]Code
	contracts []Contract
	keys      *enigma.KeyPair
}

func NewState(chainID string, height int64, ioSeed []byte) (*State, error) {
	if chainID == "" {
		return nil, errors.New("chain id is required")
	}
	if height < 1 {
		return nil, fmt.Errorf("height must be positive, got %d", height)
	}
	keys, err := enigma.NewKeyPair(ioSeed)
	if err != nil {
		return nil, err
	}
	return &State{
		chainID: chainID,
		height:  height,
		codes:   map[uint64]Code{},
		keys:    keys,
	}, nil
}

func (s *State) ChainID() string {
	return s.chainID
}

func (s *State) Height() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.height
}

// AdvanceHeight produces the next block and returns its height.
func (s *State) AdvanceHeight() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.height++
	return s.height
}

func (s *State) Keys() *enigma.KeyPair {
	return s.keys
}

func (s *State) AddCode(code Code) {
	code.Hash = strings.ToLower(code.Hash)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[code.ID] = code
}

func (s *State) AddContract(c Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.codes[c.CodeID]; !ok {
		return fmt.Errorf("contract %s: %w", c.Address, ErrUnknownCode)
	}
	s.contracts = append(s.contracts, c)
	return nil
}

// ContractsByCode returns contracts in instantiation order.
func (s *State) ContractsByCode(codeID uint64) ([]Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.codes[codeID]; !ok {
		return nil, ErrUnknownCode
	}
	var out []Contract
	for _, c := range s.contracts {
		if c.CodeID == codeID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *State) CodeHash(contractAddr string) (string, error) {
	c, err := s.contract(contractAddr)
	if err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.codes[c.CodeID].Hash, nil
}

func (s *State) contract(addr string) (Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.contracts {
		if c.Address == addr {
			return c, nil
		}
	}
	return Contract{}, ErrUnknownContract
}

// Search answers the alias registry "search" query: by alias name or by
// owner address.
func (s *State) Search(contractAddr string, params models.SearchParams) (models.SearchResponse, error) {
	c, err := s.contract(contractAddr)
	if err != nil {
		return models.SearchResponse{}, err
	}
	var match func(models.AliasAttributes) bool
	switch params.SearchType {
	case "alias":
		match = func(a models.AliasAttributes) bool { return a.Alias == params.SearchValue }
	case "address":
		match = func(a models.AliasAttributes) bool { return a.Address == params.SearchValue }
	default:
		return models.SearchResponse{}, fmt.Errorf("%w: %q", ErrUnknownSearch, params.SearchType)
	}
	for _, a := range c.Aliases {
		if match(a) {
			return models.SearchResponse{Type: params.SearchType, Attributes: a}, nil
		}
	}
	return models.SearchResponse{}, ErrAliasNotFound
}

// CodeIDs lists the uploaded code IDs in ascending order.
func (s *State) CodeIDs() []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]uint64, 0, len(s.codes))
	for id := range s.codes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

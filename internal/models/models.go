package models

type Coin struct {
	Amount string `json:"amount" yaml:"amount"`
	Denom  string `json:"denom" yaml:"denom"`
}

// ContractDescriptor describes one contract instance created from a code ID.
type ContractDescriptor struct {
	Address   string
	CodeID    uint64
	Creator   string
	Label     string
	IBCPortID string
}

// Alias registry contract messages.

type SearchQuery struct {
	Search SearchParams `json:"search"`
}

type SearchParams struct {
	SearchType  string `json:"search_type"`
	SearchValue string `json:"search_value"`
}

type AliasAttributes struct {
	Alias     string  `json:"alias"`
	AvatarURL *string `json:"avatar_url"`
	Address   string  `json:"address"`
}

type SearchResponse struct {
	Type       string          `json:"type"`
	Attributes AliasAttributes `json:"attributes"`
}

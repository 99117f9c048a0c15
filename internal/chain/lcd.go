package chain

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"SecretQuery/internal/models"
)

const defaultClientTimeout = 10 * time.Second

// LCDClient is a read-only client bound to one node REST endpoint.
type LCDClient struct {
	baseURL string
	client  *http.Client
}

// NewLCDClient performs no I/O.
func NewLCDClient(baseURL string) *LCDClient {
	return &LCDClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultClientTimeout},
	}
}

func (c *LCDClient) BaseURL() string {
	return c.baseURL
}

func (c *LCDClient) ChainID(ctx context.Context) (string, error) {
	var resp nodeInfoResponse
	if err := c.getJSON(ctx, c.baseURL+models.RouteNodeInfo, &resp); err != nil {
		return "", &ConnectionError{Op: "chain id", Err: err}
	}
	if resp.DefaultNodeInfo.Network == "" {
		return "", &ConnectionError{Op: "chain id", Err: errors.New("node returned an empty network")}
	}
	return resp.DefaultNodeInfo.Network, nil
}

func (c *LCDClient) Height(ctx context.Context) (int64, error) {
	var resp latestBlockResponse
	if err := c.getJSON(ctx, c.baseURL+models.RouteLatestBlock, &resp); err != nil {
		return 0, &ConnectionError{Op: "block height", Err: err}
	}
	height, err := parseInt64(resp.Block.Header.Height)
	if err != nil {
		return 0, &ConnectionError{Op: "block height", Err: err}
	}
	if height < 1 {
		return 0, &ConnectionError{Op: "block height", Err: fmt.Errorf("node reported height %d", height)}
	}
	return height, nil
}

func (c *LCDClient) ContractsByCode(ctx context.Context, codeID uint64) ([]models.ContractDescriptor, error) {
	op := fmt.Sprintf("contracts of code %d", codeID)
	if codeID == 0 {
		return nil, &QueryError{Op: op, Err: ErrInvalidCodeID}
	}
	endpoint := c.baseURL + models.RouteContractsByCode + strconv.FormatUint(codeID, 10)
	var resp contractsByCodeResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, &QueryError{Op: op, Err: err}
	}

	out := make([]models.ContractDescriptor, 0, len(resp.ContractInfos))
	for _, info := range resp.ContractInfos {
		if info.ContractAddress == "" {
			return nil, &QueryError{Op: op, Err: errors.New("contract without address in response")}
		}
		id := codeID
		if info.ContractInfo.CodeID != "" {
			parsed, err := strconv.ParseUint(info.ContractInfo.CodeID, 10, 64)
			if err != nil {
				return nil, &QueryError{Op: op, Err: err}
			}
			id = parsed
		}
		out = append(out, models.ContractDescriptor{
			Address:   info.ContractAddress,
			CodeID:    id,
			Creator:   info.ContractInfo.Creator,
			Label:     info.ContractInfo.Label,
			IBCPortID: info.ContractInfo.IBCPortID,
		})
	}
	return out, nil
}

func (c *LCDClient) ContractCodeHash(ctx context.Context, contractAddr string) (string, error) {
	op := "code hash of " + contractAddr
	var resp codeHashResponse
	if err := c.getJSON(ctx, c.baseURL+models.RouteCodeHashByAddr+url.PathEscape(contractAddr), &resp); err != nil {
		return "", &QueryError{Op: op, Err: err}
	}
	if resp.CodeHash == "" {
		return "", &QueryError{Op: op, Err: errors.New("node returned an empty code hash")}
	}
	return strings.ToLower(resp.CodeHash), nil
}

// TxEncryptionKey returns the node's consensus IO public key.
func (c *LCDClient) TxEncryptionKey(ctx context.Context) ([]byte, error) {
	var resp txKeyResponse
	if err := c.getJSON(ctx, c.baseURL+models.RouteTxEncryptionKey, &resp); err != nil {
		return nil, &QueryError{Op: "tx encryption key", Err: err}
	}
	key, err := base64.StdEncoding.DecodeString(resp.Key)
	if err != nil {
		return nil, &QueryError{Op: "tx encryption key", Err: err}
	}
	return key, nil
}

// QuerySmartEncrypted sends an already encrypted smart query and returns the
// still encrypted answer.
func (c *LCDClient) QuerySmartEncrypted(ctx context.Context, contractAddr string, query []byte) ([]byte, error) {
	op := "contract " + contractAddr
	u, err := url.Parse(c.baseURL + models.RouteQueryContract + url.PathEscape(contractAddr))
	if err != nil {
		return nil, &QueryError{Op: op, Err: err}
	}
	values := url.Values{}
	values.Set("query", base64.StdEncoding.EncodeToString(query))
	u.RawQuery = values.Encode()

	var resp querySmartResponse
	if err := c.getJSON(ctx, u.String(), &resp); err != nil {
		return nil, &QueryError{Op: op, Err: err}
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data)
	if err != nil {
		return nil, &QueryError{Op: op, Err: err}
	}
	return data, nil
}

func (c *LCDClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return statusError(resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func statusError(status int, body []byte) error {
	serr := &StatusError{StatusCode: status}
	var env errorResponse
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		serr.Code = env.Code
		serr.Message = env.Message
		return serr
	}
	serr.Message = strings.TrimSpace(string(body))
	return serr
}

func parseInt64(v string) (int64, error) {
	if v == "" {
		return 0, errors.New("empty int string")
	}
	return strconv.ParseInt(v, 10, 64)
}

// LCD response types

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type nodeInfoResponse struct {
	DefaultNodeInfo struct {
		Network string `json:"network"`
		Moniker string `json:"moniker"`
	} `json:"default_node_info"`
}

type latestBlockResponse struct {
	Block struct {
		Header struct {
			ChainID string `json:"chain_id"`
			Height  string `json:"height"`
		} `json:"header"`
	} `json:"block"`
}

type contractsByCodeResponse struct {
	ContractInfos []contractInfoWithAddress `json:"contract_infos"`
}

type contractInfoWithAddress struct {
	ContractAddress string       `json:"contract_address"`
	ContractInfo    contractInfo `json:"contract_info"`
}

type contractInfo struct {
	CodeID    string `json:"code_id"`
	Creator   string `json:"creator"`
	Label     string `json:"label"`
	IBCPortID string `json:"ibc_port_id"`
}

type codeHashResponse struct {
	CodeHash string `json:"code_hash"`
}

type txKeyResponse struct {
	Key string `json:"key"`
}

type querySmartResponse struct {
	Data string `json:"data"`
}

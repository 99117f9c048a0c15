package localnode

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"SecretQuery/internal/enigma"
	"SecretQuery/internal/models"

	"github.com/go-chi/chi/v5"
)

// gRPC status codes used by the gateway error body.
const (
	codeUnknown         = 2
	codeInvalidArgument = 3
	codeNotFound        = 5
	codeInternal        = 13
)

type Handler struct {
	State *State
}

type nodeInfoResponse struct {
	DefaultNodeInfo struct {
		Network string `json:"network"`
		Moniker string `json:"moniker"`
	} `json:"default_node_info"`
}

type blockHeader struct {
	ChainID string `json:"chain_id"`
	Height  string `json:"height"`
}

type latestBlockResponse struct {
	Block struct {
		Header blockHeader `json:"header"`
	} `json:"block"`
}

type contractInfo struct {
	CodeID    string `json:"code_id"`
	Creator   string `json:"creator"`
	Label     string `json:"label"`
	IBCPortID string `json:"ibc_port_id"`
}

type contractInfoWithAddress struct {
	ContractAddress string       `json:"contract_address"`
	ContractInfo    contractInfo `json:"contract_info"`
}

type contractsByCodeResponse struct {
	ContractInfos []contractInfoWithAddress `json:"contract_infos"`
}

func NewHandler(state *State) *Handler {
	return &Handler{State: state}
}

func (h *Handler) NodeInfo(w http.ResponseWriter, r *http.Request) {
	var resp nodeInfoResponse
	resp.DefaultNodeInfo.Network = h.State.ChainID()
	resp.DefaultNodeInfo.Moniker = "localnode"
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) LatestBlock(w http.ResponseWriter, r *http.Request) {
	var resp latestBlockResponse
	resp.Block.Header = blockHeader{
		ChainID: h.State.ChainID(),
		Height:  strconv.FormatInt(h.State.Height(), 10),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ContractsByCode(w http.ResponseWriter, r *http.Request) {
	codeID, err := strconv.ParseUint(chi.URLParam(r, "codeId"), 10, 64)
	if err != nil || codeID == 0 {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "invalid code id")
		return
	}

	contracts, err := h.State.ContractsByCode(codeID)
	if err != nil {
		writeStateError(w, err)
		return
	}

	resp := contractsByCodeResponse{ContractInfos: []contractInfoWithAddress{}}
	for _, c := range contracts {
		resp.ContractInfos = append(resp.ContractInfos, contractInfoWithAddress{
			ContractAddress: c.Address,
			ContractInfo: contractInfo{
				CodeID:  strconv.FormatUint(c.CodeID, 10),
				Creator: c.Creator,
				Label:   c.Label,
			},
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) CodeHash(w http.ResponseWriter, r *http.Request) {
	hash, err := h.State.CodeHash(chi.URLParam(r, "contractAddress"))
	if err != nil {
		writeStateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"code_hash": hash})
}

func (h *Handler) TxKey(w http.ResponseWriter, r *http.Request) {
	key := base64.StdEncoding.EncodeToString(h.State.Keys().PubKey())
	writeJSON(w, http.StatusOK, map[string]string{"key": key})
}

// QueryContract opens an encrypted smart query, runs it and seals the
// base64 JSON answer for the sender.
func (h *Handler) QueryContract(w http.ResponseWriter, r *http.Request) {
	addr := chi.URLParam(r, "contractAddress")
	codeHash, err := h.State.CodeHash(addr)
	if err != nil {
		writeStateError(w, err)
		return
	}

	raw, err := base64.StdEncoding.DecodeString(r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "query is not base64")
		return
	}
	req, err := h.State.Keys().OpenRequest(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "failed to decrypt query")
		return
	}

	plaintext := string(req.Plaintext)
	if !strings.HasPrefix(strings.ToLower(plaintext), codeHash) {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "code hash mismatch")
		return
	}
	var query models.SearchQuery
	if err := json.Unmarshal([]byte(plaintext[len(codeHash):]), &query); err != nil || query.Search.SearchType == "" {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "unknown query")
		return
	}

	result, err := h.State.Search(addr, query.Search)
	if errors.Is(err, ErrAliasNotFound) || errors.Is(err, ErrUnknownSearch) {
		h.writeContractError(w, req, err)
		return
	}
	if err != nil {
		writeStateError(w, err)
		return
	}
	body, err := json.Marshal(result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "encode result failed")
		return
	}
	sealed, err := h.State.Keys().SealResponse(req, []byte(base64.StdEncoding.EncodeToString(body)))
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "encrypt result failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"data": base64.StdEncoding.EncodeToString(sealed)})
}

// writeContractError reports a failure raised by the contract itself. Its
// text is only readable by the sender, like on a real node.
func (h *Handler) writeContractError(w http.ResponseWriter, req *enigma.Request, cause error) {
	body, err := json.Marshal(map[string]any{"generic_err": map[string]string{"msg": cause.Error()}})
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "encode error failed")
		return
	}
	sealed, err := h.State.Keys().SealResponse(req, body)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "encrypt error failed")
		return
	}
	msg := "encrypted: " + base64.StdEncoding.EncodeToString(sealed) + ": query contract failed"
	writeError(w, http.StatusInternalServerError, codeUnknown, msg)
}

func writeStateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownCode), errors.Is(err, ErrUnknownContract), errors.Is(err, ErrAliasNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, ErrUnknownSearch):
		writeError(w, http.StatusBadRequest, codeInvalidArgument, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternal, err.Error())
	}
}

package localnode

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// BlockStream serves the CometBFT /websocket endpoint. After a client
// subscribes, a block is produced every Interval and pushed as a NewBlock
// event.
type BlockStream struct {
	State    *State
	Interval time.Duration
	Logger   *zap.Logger

	upgrader websocket.Upgrader
}

func NewBlockStream(state *State, interval time.Duration, logger *zap.Logger) *BlockStream {
	if interval <= 0 {
		interval = time.Second
	}
	return &BlockStream{
		State:    state,
		Interval: interval,
		Logger:   logger,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  struct {
		Query string `json:"query"`
	} `json:"params"`
}

func (s *BlockStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	var req rpcRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.Logger.Debug("ws read subscribe failed", zap.Error(err))
		return
	}
	if req.Method != "subscribe" || req.Params.Query != "tm.event='NewBlock'" {
		_ = conn.WriteJSON(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error": map[string]any{
				"code":    -32602,
				"message": "Invalid params",
				"data":    "only tm.event='NewBlock' subscriptions are supported",
			},
		})
		return
	}
	if err := conn.WriteJSON(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": map[string]any{}}); err != nil {
		return
	}

	// Drain client frames so close messages are noticed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-closed:
			return
		case <-ticker.C:
		}
		height := s.State.AdvanceHeight()
		if err := conn.WriteJSON(newBlockEvent(req.ID, s.State.ChainID(), height, time.Now().UTC())); err != nil {
			s.Logger.Debug("ws write failed", zap.Error(err))
			return
		}
	}
}

func newBlockEvent(id json.RawMessage, chainID string, height int64, at time.Time) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"query": "tm.event='NewBlock'",
			"data": map[string]any{
				"type": "tendermint/event/NewBlock",
				"value": map[string]any{
					"block": map[string]any{
						"header": map[string]any{
							"chain_id": chainID,
							"height":   strconv.FormatInt(height, 10),
							"time":     at.Format(time.RFC3339Nano),
						},
					},
				},
			},
		},
	}
}

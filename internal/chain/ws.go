package chain

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const NewBlockQuery = "tm.event='NewBlock'"

type WSClient struct {
	Endpoint string
	Conn     *websocket.Conn
}

func NewWSClient(endpoint string) *WSClient {
	return &WSClient{Endpoint: endpoint}
}

func (c *WSClient) Connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: defaultClientTimeout}
	conn, _, err := dialer.DialContext(ctx, c.Endpoint, nil)
	if err != nil {
		return err
	}
	c.Conn = conn
	return nil
}

func (c *WSClient) Close() {
	if c.Conn != nil {
		_ = c.Conn.Close()
	}
}

func (c *WSClient) Subscribe(ctx context.Context, query string) error {
	if c.Conn == nil {
		return errors.New("ws client is not connected")
	}
	payload := map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "subscribe",
		"params": map[string]any{
			"query": query,
		},
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.Conn.SetWriteDeadline(deadline)
	}
	return c.Conn.WriteJSON(payload)
}

// Read blocks for the next message. Cancelling ctx closes the connection so
// a pending read returns.
func (c *WSClient) Read(ctx context.Context) ([]byte, error) {
	if c.Conn == nil {
		return nil, errors.New("ws client is not connected")
	}
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = c.Conn.Close()
		case <-done:
		}
	}()
	_, msg, err := c.Conn.ReadMessage()
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return msg, err
}

// BlockHeader is the part of a NewBlock event the tools report.
type BlockHeader struct {
	ChainID string
	Height  int64
	Time    time.Time
}

// ParseWSBlock extracts the header of a NewBlock event. ok is false for
// subscription acknowledgements and other events.
func ParseWSBlock(msg []byte) (*BlockHeader, bool, error) {
	var env struct {
		Result struct {
			Data json.RawMessage `json:"data"`
		} `json:"result"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Data    string `json:"data"`
		} `json:"error"`
	}
	if err := json.Unmarshal(msg, &env); err != nil {
		return nil, false, err
	}
	if env.Error != nil {
		if env.Error.Data != "" {
			return nil, false, errors.New(env.Error.Message + ": " + env.Error.Data)
		}
		return nil, false, errors.New(env.Error.Message)
	}
	if len(env.Result.Data) == 0 {
		return nil, false, nil
	}

	var data struct {
		Type  string `json:"type"`
		Value struct {
			Block struct {
				Header struct {
					ChainID string `json:"chain_id"`
					Height  string `json:"height"`
					Time    string `json:"time"`
				} `json:"header"`
			} `json:"block"`
		} `json:"value"`
	}
	if err := json.Unmarshal(env.Result.Data, &data); err != nil {
		return nil, false, err
	}
	if !strings.HasSuffix(data.Type, "NewBlock") {
		return nil, false, nil
	}

	height, err := parseInt64(data.Value.Block.Header.Height)
	if err != nil {
		return nil, false, err
	}
	blockTime, _ := time.Parse(time.RFC3339Nano, data.Value.Block.Header.Time)
	return &BlockHeader{
		ChainID: data.Value.Block.Header.ChainID,
		Height:  height,
		Time:    blockTime,
	}, true, nil
}

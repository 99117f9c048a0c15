package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"SecretQuery/internal/chain"
	"SecretQuery/internal/enigma"
	"SecretQuery/internal/fees"
	"SecretQuery/internal/localnode"
	"SecretQuery/internal/models"
	"SecretQuery/internal/wallet"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testMnemonic = strings.Repeat("abandon ", 23) + "art"

func startLocalNode(t *testing.T) *httptest.Server {
	t.Helper()
	state, err := localnode.NewSeededState("test-chain-1", 42)
	require.NoError(t, err)
	stream := localnode.NewBlockStream(state, 10*time.Millisecond, zap.NewNop())
	srv := localnode.NewServer(localnode.NewHandler(state), stream, zap.NewNop())
	ts := httptest.NewServer(srv.Router)
	t.Cleanup(ts.Close)
	return ts
}

func newSigningClient(t *testing.T, baseURL string) *chain.SigningClient {
	t.Helper()
	w, err := wallet.FromMnemonic(testMnemonic, "secret")
	require.NoError(t, err)
	seed, err := enigma.GenerateSeed()
	require.NoError(t, err)
	lcd := chain.NewLCDClient(baseURL)
	enc, err := enigma.New(seed, lcd)
	require.NoError(t, err)
	c, err := chain.NewSigningClient(lcd, w, enc, fees.Default())
	require.NoError(t, err)
	return c
}

func TestConnectorLocalNode(t *testing.T) {
	ts := startLocalNode(t)
	var out bytes.Buffer
	c := Connector{Chain: chain.NewLCDClient(ts.URL), Out: &out, Logger: zap.NewNop()}
	require.NoError(t, c.Run(context.Background()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Equal(t, []string{
		"ChainId: test-chain-1",
		"Block height: 42",
		"Successfully connected to Secret Network",
	}, lines)
}

func TestConnectorUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	var out bytes.Buffer
	c := Connector{Chain: chain.NewLCDClient(url), Out: &out, Logger: zap.NewNop()}
	err := c.Run(context.Background())
	var cerr *chain.ConnectionError
	require.ErrorAs(t, err, &cerr)
	require.Empty(t, out.String())
}

type heightFails struct{}

func (heightFails) ChainID(context.Context) (string, error) { return "secret-4", nil }

func (heightFails) Height(context.Context) (int64, error) {
	return 0, &chain.ConnectionError{Op: "block height", Err: errors.New("boom")}
}

func TestConnectorNoPartialOutput(t *testing.T) {
	var out bytes.Buffer
	c := Connector{Chain: heightFails{}, Out: &out, Logger: zap.NewNop()}
	require.EqualError(t, c.Run(context.Background()), "could not get block height: boom")
	require.Empty(t, out.String())
}

func TestContractQueryRunner(t *testing.T) {
	ts := startLocalNode(t)
	var out bytes.Buffer
	r := ContractQueryRunner{
		Client: newSigningClient(t, ts.URL),
		Out:    &out,
		Logger: zap.NewNop(),
		CodeID: localnode.AliasRegistryCodeID,
	}
	require.NoError(t, r.Run(context.Background()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "Wallet address=secret1ylgyslls3jur2d0d5vn9ul6cz2lu6z08pl9vqk", lines[0])
	require.Equal(t, fmt.Sprintf("address=%s code_id=29003 creator=%s label=%q",
		localnode.AliasRegistryFirst, localnode.AliceAddress, "alias-registry"), lines[1])
	require.True(t, strings.HasPrefix(lines[2], "address="+localnode.AliasRegistrySecond))
}

func TestContractQueryRunnerSearch(t *testing.T) {
	ts := startLocalNode(t)
	var out bytes.Buffer
	r := ContractQueryRunner{
		Client: newSigningClient(t, ts.URL),
		Out:    &out,
		Logger: zap.NewNop(),
		CodeID: localnode.AliasRegistryCodeID,
		Search: &AliasSearch{Params: models.SearchParams{SearchType: "alias", SearchValue: "bob"}},
	}
	require.NoError(t, r.Run(context.Background()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	require.Equal(t, fmt.Sprintf(`Search alias="bob" on %s: {"type":"alias","attributes":{"alias":"bob","avatar_url":null,"address":"%s"}}`,
		localnode.AliasRegistryFirst, localnode.BobAddress), lines[3])
}

func TestContractQueryRunnerErrors(t *testing.T) {
	ts := startLocalNode(t)
	client := newSigningClient(t, ts.URL)

	var out bytes.Buffer
	r := ContractQueryRunner{Client: client, Out: &out, Logger: zap.NewNop(), CodeID: 1}
	err := r.Run(context.Background())
	var qerr *chain.QueryError
	require.ErrorAs(t, err, &qerr)
	require.Equal(t, "Wallet address=secret1ylgyslls3jur2d0d5vn9ul6cz2lu6z08pl9vqk\n", out.String())

	out.Reset()
	r = ContractQueryRunner{
		Client: client,
		Out:    &out,
		Logger: zap.NewNop(),
		CodeID: localnode.AliasRegistryCodeID,
		Search: &AliasSearch{
			Contract: localnode.AliasRegistrySecond,
			Params:   models.SearchParams{SearchType: "alias", SearchValue: "alice"},
		},
	}
	require.ErrorAs(t, r.Run(context.Background()), &qerr)
}

type emptyClient struct{}

func (emptyClient) Address() string { return "secret1empty" }

func (emptyClient) QueryContractsByCode(context.Context, uint64) ([]models.ContractDescriptor, error) {
	return nil, nil
}

func (emptyClient) QueryContractSmart(context.Context, string, any, any) error {
	return errors.New("unexpected query")
}

func TestContractQueryRunnerNoContracts(t *testing.T) {
	var out bytes.Buffer
	r := ContractQueryRunner{Client: emptyClient{}, Out: &out, Logger: zap.NewNop(), CodeID: 7}
	require.NoError(t, r.Run(context.Background()))
	require.Equal(t, "Wallet address=secret1empty\nno contracts for code id 7\n", out.String())

	r.Search = &AliasSearch{Params: models.SearchParams{SearchType: "alias", SearchValue: "x"}}
	require.ErrorIs(t, r.Run(context.Background()), ErrNoContracts)
}

func TestHeightWatcher(t *testing.T) {
	ts := startLocalNode(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out bytes.Buffer
	w := HeightWatcher{
		Endpoint: chain.DefaultWSEndpoint(ts.URL),
		Out:      &out,
		Logger:   zap.NewNop(),
		Blocks:   3,
	}
	require.NoError(t, w.Run(ctx))
	require.Equal(t, "Block height: 43\nBlock height: 44\nBlock height: 45\n", out.String())
}

func TestHeightWatcherErrors(t *testing.T) {
	var out bytes.Buffer
	w := HeightWatcher{Out: &out, Logger: zap.NewNop()}
	require.Error(t, w.Run(context.Background()))

	ts := httptest.NewServer(http.NotFoundHandler())
	endpoint := chain.DefaultWSEndpoint(ts.URL)
	ts.Close()
	w.Endpoint = endpoint
	require.Error(t, w.Run(context.Background()))
	require.Empty(t, out.String())
}

func TestHeightWatcherStopsOnCancel(t *testing.T) {
	ts := startLocalNode(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	w := HeightWatcher{Endpoint: chain.DefaultWSEndpoint(ts.URL), Out: &out, Logger: zap.NewNop()}
	require.NoError(t, w.Run(ctx))
}

type steppedHeights struct {
	heights []int64
	calls   int
}

func (s *steppedHeights) ChainID(context.Context) (string, error) { return "test-chain-1", nil }

func (s *steppedHeights) Height(context.Context) (int64, error) {
	if s.calls >= len(s.heights) {
		return 0, &chain.ConnectionError{Op: "block height", Err: errors.New("node gone")}
	}
	h := s.heights[s.calls]
	s.calls++
	return h, nil
}

func TestHeightPoller(t *testing.T) {
	src := &steppedHeights{heights: []int64{42, 42, 43, 43, 45}}
	var out bytes.Buffer
	p := HeightPoller{Chain: src, Out: &out, Logger: zap.NewNop(), Interval: time.Millisecond, Blocks: 3}
	require.NoError(t, p.Run(context.Background()))
	require.Equal(t, "Block height: 42\nBlock height: 43\nBlock height: 45\n", out.String())
	require.Equal(t, 5, src.calls)
}

func TestHeightPollerErrors(t *testing.T) {
	src := &steppedHeights{heights: []int64{7}}
	var out bytes.Buffer
	p := HeightPoller{Chain: src, Out: &out, Logger: zap.NewNop(), Interval: time.Millisecond}
	var cerr *chain.ConnectionError
	require.ErrorAs(t, p.Run(context.Background()), &cerr)
	require.Equal(t, "Block height: 7\n", out.String())

	p.Interval = 0
	require.Error(t, p.Run(context.Background()))
}

func TestHeightPollerLocalNode(t *testing.T) {
	ts := startLocalNode(t)
	var out bytes.Buffer
	p := HeightPoller{Chain: chain.NewLCDClient(ts.URL), Out: &out, Logger: zap.NewNop(), Interval: time.Millisecond, Blocks: 1}
	require.NoError(t, p.Run(context.Background()))
	require.Equal(t, "Block height: 42\n", out.String())
}

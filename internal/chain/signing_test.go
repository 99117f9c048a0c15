package chain

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"SecretQuery/internal/enigma"
	"SecretQuery/internal/fees"
	"SecretQuery/internal/localnode"
	"SecretQuery/internal/models"
	"SecretQuery/internal/wallet"

	"github.com/stretchr/testify/require"
)

var testMnemonic = strings.Repeat("abandon ", 23) + "art"

func newTestSigningClient(t *testing.T, baseURL string) (*SigningClient, *wallet.Wallet) {
	t.Helper()
	w, err := wallet.FromMnemonic(testMnemonic, "secret")
	require.NoError(t, err)
	seed, err := enigma.GenerateSeed()
	require.NoError(t, err)
	lcd := NewLCDClient(baseURL)
	enc, err := enigma.New(seed, lcd)
	require.NoError(t, err)
	c, err := NewSigningClient(lcd, w, enc, fees.Default())
	require.NoError(t, err)
	return c, w
}

func TestNewSigningClientValidation(t *testing.T) {
	w, err := wallet.FromMnemonic(testMnemonic, "secret")
	require.NoError(t, err)
	lcd := NewLCDClient("http://localhost")
	enc, err := enigma.New(make([]byte, enigma.SeedSize), lcd)
	require.NoError(t, err)

	_, err = NewSigningClient(nil, w, enc, fees.Default())
	require.Error(t, err)
	_, err = NewSigningClient(lcd, nil, enc, fees.Default())
	require.Error(t, err)
	_, err = NewSigningClient(lcd, w, nil, fees.Default())
	require.Error(t, err)

	broken := fees.Default()
	broken[fees.Send] = fees.Fee{Gas: "80000"}
	_, err = NewSigningClient(lcd, w, enc, broken)
	require.Error(t, err)
}

func TestSigningClientIdentity(t *testing.T) {
	c, w := newTestSigningClient(t, "http://localhost")
	require.Equal(t, "secret1ylgyslls3jur2d0d5vn9ul6cz2lu6z08pl9vqk", c.Address())

	sig, err := c.Sign([]byte("hello"))
	require.NoError(t, err)
	require.True(t, w.Verify([]byte("hello"), sig))

	fee, err := c.Fee(fees.Exec)
	require.NoError(t, err)
	require.Equal(t, "500000", fee.Gas)
	require.Equal(t, []models.Coin{{Amount: "500000", Denom: "uscrt"}}, fee.Amount)

	_, err = c.Fee(fees.Kind("stake"))
	require.Error(t, err)
}

func TestQueryContractsByCode(t *testing.T) {
	ts, _ := startLocalNode(t)
	c, _ := newTestSigningClient(t, ts.URL)

	contracts, err := c.QueryContractsByCode(context.Background(), localnode.AliasRegistryCodeID)
	require.NoError(t, err)
	require.Len(t, contracts, 2)

	_, err = c.QueryContractsByCode(context.Background(), 404)
	var qerr *QueryError
	require.ErrorAs(t, err, &qerr)
}

func TestQueryContractSmart(t *testing.T) {
	ts, _ := startLocalNode(t)
	c, _ := newTestSigningClient(t, ts.URL)
	ctx := context.Background()

	var res models.SearchResponse
	query := models.SearchQuery{Search: models.SearchParams{SearchType: "alias", SearchValue: "alice"}}
	require.NoError(t, c.QueryContractSmart(ctx, localnode.AliasRegistryFirst, query, &res))
	require.Equal(t, "alias", res.Type)
	require.Equal(t, "alice", res.Attributes.Alias)
	require.Equal(t, localnode.AliceAddress, res.Attributes.Address)
	require.NotNil(t, res.Attributes.AvatarURL)

	query = models.SearchQuery{Search: models.SearchParams{SearchType: "address", SearchValue: localnode.BobAddress}}
	require.NoError(t, c.QueryContractSmart(ctx, localnode.AliasRegistryFirst, query, &res))
	require.Equal(t, "bob", res.Attributes.Alias)
	require.Nil(t, res.Attributes.AvatarURL)
}

func TestQueryContractSmartErrors(t *testing.T) {
	ts, _ := startLocalNode(t)
	c, _ := newTestSigningClient(t, ts.URL)
	ctx := context.Background()

	var res models.SearchResponse
	query := models.SearchQuery{Search: models.SearchParams{SearchType: "alias", SearchValue: "alice"}}

	err := c.QueryContractSmart(ctx, localnode.AliasRegistrySecond, query, &res)
	var qerr *QueryError
	require.ErrorAs(t, err, &qerr)
	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, http.StatusInternalServerError, serr.StatusCode)
	require.Equal(t, `{"generic_err":{"msg":"alias not found"}}: query contract failed`, serr.Message)
	require.NotContains(t, err.Error(), "encrypted:")

	query.Search.SearchType = "avatar"
	err = c.QueryContractSmart(ctx, localnode.AliasRegistryFirst, query, &res)
	require.ErrorAs(t, err, &serr)
	require.Contains(t, serr.Message, "unknown search type")

	err = c.QueryContractSmart(ctx, "secret1missing", query, &res)
	require.ErrorAs(t, err, &qerr)

	_, err = NewLCDClient(unreachableURL(t)).ContractCodeHash(ctx, localnode.AliasRegistryFirst)
	require.ErrorAs(t, err, &qerr)
}

func TestQueryContractSmartUndecryptableError(t *testing.T) {
	nodeKey, err := enigma.NewKeyPair(make([]byte, enigma.SeedSize))
	require.NoError(t, err)
	const sealed = "encrypted: AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA: query contract failed"

	mux := http.NewServeMux()
	mux.HandleFunc(models.RouteCodeHashByAddr+localnode.AliasRegistryFirst, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code_hash":"` + localnode.AliasRegistryCodeHash + `"}`))
	})
	mux.HandleFunc(models.RouteTxEncryptionKey, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"key":"` + base64.StdEncoding.EncodeToString(nodeKey.PubKey()) + `"}`))
	})
	mux.HandleFunc(models.RouteQueryContract+localnode.AliasRegistryFirst, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":2,"message":"` + sealed + `","details":[]}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c, _ := newTestSigningClient(t, ts.URL)
	var res models.SearchResponse
	query := models.SearchQuery{Search: models.SearchParams{SearchType: "alias", SearchValue: "alice"}}
	err = c.QueryContractSmart(context.Background(), localnode.AliasRegistryFirst, query, &res)
	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, sealed, serr.Message)
}

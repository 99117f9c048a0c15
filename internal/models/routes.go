package models

// LCD REST routes served by Secret Network nodes through the gRPC gateway.
// Routes ending in "/" take one path parameter.
const (
	RouteNodeInfo        = "/cosmos/base/tendermint/v1beta1/node_info"
	RouteLatestBlock     = "/cosmos/base/tendermint/v1beta1/blocks/latest"
	RouteContractsByCode = "/compute/v1beta1/contracts/"
	RouteCodeHashByAddr  = "/compute/v1beta1/code_hash/by_contract_address/"
	RouteQueryContract   = "/compute/v1beta1/query/"
	RouteTxEncryptionKey = "/registration/v1beta1/tx-key"

	// CometBFT RPC websocket.
	RouteWebsocket = "/websocket"
)

package chain

import (
	"net/url"
	"strings"

	"SecretQuery/internal/models"
)

// DefaultWSEndpoint maps a CometBFT RPC address (http, https, tcp, ws or
// wss) to its websocket endpoint. It returns "" for anything else.
func DefaultWSEndpoint(rpc string) string {
	u, err := url.Parse(strings.TrimSpace(rpc))
	if err != nil || u.Host == "" {
		return ""
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http", "tcp":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return ""
	}
	u.Path = strings.TrimRight(u.Path, "/")
	if !strings.HasSuffix(u.Path, models.RouteWebsocket) {
		u.Path += models.RouteWebsocket
	}
	u.RawPath, u.RawQuery, u.Fragment = "", "", ""
	return u.String()
}

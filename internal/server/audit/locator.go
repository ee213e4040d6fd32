package audit

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/cvgenius/internal/netx"
)

const LocalNetwork = "Local network"

// HTTPLocator asks an ip-api.com compatible endpoint for the city and
// country of an address. Any failure yields "".
type HTTPLocator struct {
	baseURL string
	client  *http.Client
}

func NewHTTPLocator(baseURL string, timeout time.Duration) *HTTPLocator {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HTTPLocator{
		baseURL: strings.TrimRight(baseURL, "/") + "/",
		client:  &http.Client{Timeout: timeout},
	}
}

type locatorResponse struct {
	Status  string `json:"status"`
	City    string `json:"city"`
	Country string `json:"country"`
}

func (h *HTTPLocator) Locate(ctx context.Context, ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() || parsed.IsLinkLocalUnicast() {
		return LocalNetwork
	}

	var body locatorResponse
	url := h.baseURL + parsed.String() + "?fields=status,city,country"
	if err := netx.DoJSON(ctx, h.client, http.MethodGet, url, nil, nil, &body); err != nil || body.Status != "success" {
		return ""
	}

	switch {
	case body.City != "" && body.Country != "":
		return fmt.Sprintf("%s, %s", body.City, body.Country)
	case body.Country != "":
		return body.Country
	default:
		return ""
	}
}

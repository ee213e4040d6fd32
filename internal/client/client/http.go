package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/cvgenius/internal/client/models"
	"github.com/dmitrijs2005/cvgenius/internal/netx"
)

const (
	healthPath = "/api/healthz"
	syncPath   = "/api/cv/sync"

	defaultPingTimeout = 3 * time.Second
)

// SyncAck is the server acknowledgment of a stored CV.
type SyncAck struct {
	Success  bool      `json:"success"`
	ID       string    `json:"id"`
	SyncedAt time.Time `json:"syncedAt"`
}

var _ Client = (*HTTPClient)(nil)

// HTTPClient talks to the CVGenius API over HTTP+JSON.
type HTTPClient struct {
	baseURL     string
	http        *http.Client
	pingTimeout time.Duration
}

// NewHTTPClient returns a client for baseURL. PushCV carries no timeout of
// its own; callers bound it through ctx.
func NewHTTPClient(baseURL string, pingTimeout time.Duration) *HTTPClient {
	if pingTimeout <= 0 {
		pingTimeout = defaultPingTimeout
	}
	return &HTTPClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        &http.Client{},
		pingTimeout: pingTimeout,
	}
}

// Ping reports whether the API answers its health check.
func (c *HTTPClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.pingTimeout)
	defer cancel()

	if err := netx.DoJSON(ctx, c.http, http.MethodGet, c.baseURL+healthPath, nil, nil, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// PushCV uploads the full CV document.
func (c *HTTPClient) PushCV(ctx context.Context, cv *models.CV) (*SyncAck, error) {
	ack := &SyncAck{Success: true, ID: cv.ID}
	err := netx.DoJSON(ctx, c.http, http.MethodPost, c.baseURL+syncPath, nil, cv, ack)
	switch {
	case err == nil:
		return ack, nil
	case netx.IsStatus(err):
		return nil, fmt.Errorf("%w: sync %v", ErrRejected, err)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}

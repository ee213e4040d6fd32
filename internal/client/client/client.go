package client

import (
	"context"

	"github.com/dmitrijs2005/cvgenius/internal/client/models"
)

type Client interface {
	Ping(ctx context.Context) error
	PushCV(ctx context.Context, cv *models.CV) (*SyncAck, error)
}

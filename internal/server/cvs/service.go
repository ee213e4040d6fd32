package cvs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/cvgenius/internal/common"
	"github.com/dmitrijs2005/cvgenius/internal/logging"
)

type SyncResult struct {
	ID       string
	SyncedAt time.Time
}

type Service struct {
	repo Repository
	log  logging.Logger
	now  func() time.Time
}

func NewService(repo Repository, log logging.Logger) *Service {
	return &Service{repo: repo, log: log.With("module", "cvs"), now: time.Now}
}

type docHeader struct {
	ID           string     `json:"id"`
	LastModified *time.Time `json:"lastModified"`
}

// Sync stores a full CV document. The stored copy is replaced
// unconditionally: the last upload to arrive wins.
func (s *Service) Sync(ctx context.Context, doc json.RawMessage) (*SyncResult, error) {
	var h docHeader
	if err := json.Unmarshal(doc, &h); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidCVDocument, err)
	}
	h.ID = strings.TrimSpace(h.ID)
	if h.ID == "" {
		return nil, common.ErrMissingCVID
	}

	rec := CVRecord{
		ID:           h.ID,
		Document:     doc,
		LastModified: h.LastModified,
		SyncedAt:     s.now().UTC(),
	}
	if err := s.repo.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	s.log.Info(ctx, "cv synced", "cv_id", rec.ID, "bytes", len(doc))
	return &SyncResult{ID: rec.ID, SyncedAt: rec.SyncedAt}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*CVRecord, error) {
	return s.repo.Get(ctx, id)
}

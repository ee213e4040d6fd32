package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cvgenius/internal/client/models"
	"github.com/dmitrijs2005/cvgenius/internal/client/repositories/cvs"
)

var ErrMissingID = errors.New("cv id is required")

type CVService interface {
	SaveCV(ctx context.Context, cv *models.CV) error
	GetCV(ctx context.Context, id string) (*models.CV, error)
	GetAllCVs(ctx context.Context) ([]*models.CV, error)
	DeleteCV(ctx context.Context, id string) error
	ListDrafts(ctx context.Context) ([]*models.CV, error)
}

// SyncQueue receives the id of every saved CV.
type SyncQueue interface {
	AddToSyncQueue(ctx context.Context, id string)
}

type cvService struct {
	repo  cvs.Repository
	queue SyncQueue
	now   func() time.Time
}

// NewCVService returns the offline CV service. queue may be nil, in which
// case saves stay local.
func NewCVService(repo cvs.Repository, queue SyncQueue) CVService {
	return &cvService{repo: repo, queue: queue, now: time.Now}
}

// SaveCV stamps LastModified and IsDraft, upserts by id and queues the id
// for upload. cv is updated in place.
func (s *cvService) SaveCV(ctx context.Context, cv *models.CV) error {
	if cv == nil || cv.ID == "" {
		return ErrMissingID
	}

	cv.LastModified = s.now().UTC()
	cv.IsDraft = true

	if err := s.repo.Upsert(ctx, cv); err != nil {
		return fmt.Errorf("saving error: %w", err)
	}

	if s.queue != nil {
		s.queue.AddToSyncQueue(ctx, cv.ID)
	}
	return nil
}

// GetCV returns nil, nil when the id is unknown.
func (s *cvService) GetCV(ctx context.Context, id string) (*models.CV, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *cvService) GetAllCVs(ctx context.Context) ([]*models.CV, error) {
	return s.repo.GetAll(ctx)
}

func (s *cvService) DeleteCV(ctx context.Context, id string) error {
	return s.repo.DeleteByID(ctx, id)
}

func (s *cvService) ListDrafts(ctx context.Context) ([]*models.CV, error) {
	return s.repo.ListDrafts(ctx)
}

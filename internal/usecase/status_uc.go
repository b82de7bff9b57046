// File: internal/usecase/status_uc.go
package usecase

import (
	"context"

	"github.com/fortunto2/superduperai-landing-sub000/internal/domain"
	"github.com/fortunto2/superduperai-landing-sub000/internal/domain/model"
	"github.com/fortunto2/superduperai-landing-sub000/internal/domain/ports/repository"
)

// Compile-time check
var _ StatusUseCase = (*statusUC)(nil)

type StatusUseCase interface {
	// Get returns the session record or domain.ErrNotFound. Read-only.
	Get(ctx context.Context, sessionID string) (*model.SessionStatus, error)
}

type statusUC struct {
	store repository.StatusRepository
}

func NewStatusUseCase(store repository.StatusRepository) *statusUC {
	return &statusUC{store: store}
}

func (u *statusUC) Get(ctx context.Context, sessionID string) (*model.SessionStatus, error) {
	if sessionID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.store.Get(ctx, sessionID)
}

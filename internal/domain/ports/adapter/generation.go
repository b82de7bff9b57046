package adapter

import (
	"context"

	"github.com/fortunto2/superduperai-landing-sub000/internal/domain/model"
)

// VideoGenerator is the external generation provider, treated as a black
// box that accepts a request and exposes per-file status.
type VideoGenerator interface {
	// GenerateVideo submits a job and returns the provider's file id.
	GenerateVideo(ctx context.Context, req model.GenerationRequest) (string, error)
	// GetFile fetches current job status for a file id.
	GetFile(ctx context.Context, fileID string) (*model.GenerationFile, error)
}

package watcher

import (
	"context"
	"errors"
	"time"

	"github.com/fortunto2/superduperai-landing-sub000/internal/domain"
	"github.com/fortunto2/superduperai-landing-sub000/internal/domain/model"
	"github.com/fortunto2/superduperai-landing-sub000/internal/domain/ports/adapter"
	"github.com/fortunto2/superduperai-landing-sub000/internal/poll"
)

// JobWatcher polls the generation provider directly (not the status store)
// for one file id, aggregating sub-task completion into a percentage.
type JobWatcher struct {
	gen      adapter.VideoGenerator
	interval time.Duration

	// onProgress fires when the aggregated percentage changes.
	onProgress func(pct int)
}

type JobOption func(*JobWatcher)

func WithOnProgress(fn func(pct int)) JobOption {
	return func(w *JobWatcher) { w.onProgress = fn }
}

func NewJobWatcher(gen adapter.VideoGenerator, interval time.Duration, opts ...JobOption) *JobWatcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	w := &JobWatcher{gen: gen, interval: interval}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Watch blocks until every task of the job reached a terminal state and
// returns the final provider view. The provider briefly not knowing the
// file yet is treated as still pending.
func (w *JobWatcher) Watch(ctx context.Context, fileID string) (*model.GenerationFile, error) {
	if fileID == "" {
		return nil, domain.ErrInvalidArgument
	}

	lastPct := -1
	fetch := func(ctx context.Context) (*model.GenerationFile, error) {
		f, err := w.gen.GetFile(ctx, fileID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return &model.GenerationFile{ID: fileID}, nil
			}
			return nil, err
		}
		if pct := f.Progress(); pct != lastPct {
			lastPct = pct
			if w.onProgress != nil {
				w.onProgress(pct)
			}
		}
		return f, nil
	}

	return poll.Until(ctx, w.interval, fetch, func(f *model.GenerationFile) bool {
		return f != nil && f.Done()
	})
}

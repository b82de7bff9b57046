package watcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fortunto2/superduperai-landing-sub000/internal/domain"
	"github.com/fortunto2/superduperai-landing-sub000/internal/domain/model"
)

type scriptedGen struct {
	files []*model.GenerationFile
	errs  []error
	i     int
	calls int
}

func (g *scriptedGen) GenerateVideo(ctx context.Context, req model.GenerationRequest) (string, error) {
	return "", errors.New("not used")
}

func (g *scriptedGen) GetFile(ctx context.Context, fileID string) (*model.GenerationFile, error) {
	g.calls++
	idx := g.i
	if g.i < len(g.files)-1 {
		g.i++
	}
	if g.errs != nil && g.errs[idx] != nil {
		return nil, g.errs[idx]
	}
	return g.files[idx], nil
}

func tasks(statuses ...model.TaskStatus) []model.Task {
	out := make([]model.Task, len(statuses))
	for i, s := range statuses {
		out[i] = model.Task{Type: "txt2vid", Status: s, ID: "t"}
	}
	return out
}

func TestJobWatcher_AggregatesProgress(t *testing.T) {
	gen := &scriptedGen{files: []*model.GenerationFile{
		{ID: "f1", Tasks: tasks(model.TaskStatusInProgress, model.TaskStatusInProgress)},
		{ID: "f1", Tasks: tasks(model.TaskStatusCompleted, model.TaskStatusInProgress)},
		{ID: "f1", URL: "https://cdn.example.com/f1.mp4", Tasks: tasks(model.TaskStatusCompleted, model.TaskStatusCompleted)},
	}}

	var seen []int
	w := NewJobWatcher(gen, time.Millisecond, WithOnProgress(func(pct int) { seen = append(seen, pct) }))

	f, err := w.Watch(context.Background(), "f1")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if f.URL == "" || !f.Done() {
		t.Fatalf("want finished file, got %+v", f)
	}
	if gen.calls != 3 {
		t.Fatalf("polling must stop once all tasks are terminal, calls=%d", gen.calls)
	}
	want := []int{0, 50, 100}
	if len(seen) != len(want) {
		t.Fatalf("progress callbacks mismatch: %v", seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("progress mismatch: %v", seen)
		}
	}
}

func TestJobWatcher_ErroredTasksExcludedFromProgress(t *testing.T) {
	gen := &scriptedGen{files: []*model.GenerationFile{
		{ID: "f4", Tasks: tasks(model.TaskStatusInProgress, model.TaskStatusInProgress)},
		{ID: "f4", Tasks: tasks(model.TaskStatusCompleted, model.TaskStatusError)},
	}}

	var seen []int
	w := NewJobWatcher(gen, time.Millisecond, WithOnProgress(func(pct int) { seen = append(seen, pct) }))

	f, err := w.Watch(context.Background(), "f4")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if !f.Failed() {
		t.Fatalf("want failed job, got %+v", f)
	}
	// The errored task ends the job but never counts toward completion.
	want := []int{0, 50}
	if len(seen) != len(want) || seen[len(seen)-1] != 50 {
		t.Fatalf("progress mismatch: %v", seen)
	}
}

func TestJobWatcher_ErrorTaskIsTerminal(t *testing.T) {
	gen := &scriptedGen{files: []*model.GenerationFile{
		{ID: "f2", Tasks: tasks(model.TaskStatusCompleted, model.TaskStatusError)},
	}}
	w := NewJobWatcher(gen, time.Millisecond)

	f, err := w.Watch(context.Background(), "f2")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if !f.Failed() {
		t.Fatalf("job with an errored task should report failure: %+v", f)
	}
	if gen.calls != 1 {
		t.Fatalf("terminal on first poll, calls=%d", gen.calls)
	}
}

func TestJobWatcher_NotFoundKeepsPolling(t *testing.T) {
	gen := &scriptedGen{
		files: []*model.GenerationFile{
			nil,
			{ID: "f3", URL: "https://cdn.example.com/f3.mp4"},
		},
		errs: []error{domain.ErrNotFound, nil},
	}
	w := NewJobWatcher(gen, time.Millisecond)

	f, err := w.Watch(context.Background(), "f3")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if f.URL == "" {
		t.Fatalf("want final file, got %+v", f)
	}
	if gen.calls != 2 {
		t.Fatalf("not-found should not abort polling, calls=%d", gen.calls)
	}
}

func TestJobWatcher_EmptyFileID(t *testing.T) {
	w := NewJobWatcher(&scriptedGen{}, time.Millisecond)
	if _, err := w.Watch(context.Background(), ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
}

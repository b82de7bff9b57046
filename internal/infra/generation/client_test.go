package generation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fortunto2/superduperai-landing-sub000/internal/config"
	"github.com/fortunto2/superduperai-landing-sub000/internal/domain"
	"github.com/fortunto2/superduperai-landing-sub000/internal/domain/model"
)

func newTestClient(url string) *Client {
	return NewClient(&config.GenerationConfig{BaseURL: url, Token: "tok_test", Timeout: 2 * time.Second})
}

func TestClient_GenerateVideo(t *testing.T) {
	t.Run("success returns file id", func(t *testing.T) {
		var gotAuth string
		var gotReq model.GenerationRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/api/v1/file/generate-video" {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			gotAuth = r.Header.Get("Authorization")
			_ = json.NewDecoder(r.Body).Decode(&gotReq)
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "abc123"})
		}))
		defer srv.Close()

		id, err := newTestClient(srv.URL).GenerateVideo(context.Background(), model.GenerationRequest{
			Prompt: "sunset over ocean", Width: 1280, Height: 720, Duration: 8,
		})
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if id != "abc123" {
			t.Fatalf("want abc123, got %q", id)
		}
		if gotAuth != "Bearer tok_test" {
			t.Fatalf("bearer token not sent: %q", gotAuth)
		}
		if gotReq.Prompt != "sunset over ocean" || gotReq.References == nil {
			t.Fatalf("request body mismatch: %+v", gotReq)
		}
	})

	t.Run("non-2xx is a generation failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusPaymentRequired)
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).GenerateVideo(context.Background(), model.GenerationRequest{Prompt: "x"})
		if !errors.Is(err, domain.ErrGenerationFailed) {
			t.Fatalf("want ErrGenerationFailed, got %v", err)
		}
	})

	t.Run("empty id is a generation failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{})
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).GenerateVideo(context.Background(), model.GenerationRequest{Prompt: "x"})
		if !errors.Is(err, domain.ErrGenerationFailed) {
			t.Fatalf("want ErrGenerationFailed, got %v", err)
		}
	})

	t.Run("slow provider is bounded by context", func(t *testing.T) {
		block := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-block
		}))
		defer srv.Close()
		defer close(block)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := newTestClient(srv.URL).GenerateVideo(ctx, model.GenerationRequest{Prompt: "x"})
		if !errors.Is(err, domain.ErrGenerationFailed) {
			t.Fatalf("timeout should surface as generation failure, got %v", err)
		}
	})
}

func TestClient_GetFile(t *testing.T) {
	t.Run("returns tasks and url", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/v1/file/abc123" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"url": "https://cdn.example.com/abc123.mp4",
				"tasks": []map[string]string{
					{"type": "txt2vid", "status": "completed", "id": "t1"},
					{"type": "upscale", "status": "in_progress", "id": "t2"},
				},
			})
		}))
		defer srv.Close()

		f, err := newTestClient(srv.URL).GetFile(context.Background(), "abc123")
		if err != nil {
			t.Fatalf("get file: %v", err)
		}
		if f.ID != "abc123" || f.URL == "" || len(f.Tasks) != 2 {
			t.Fatalf("file mismatch: %+v", f)
		}
		if f.Progress() != 50 {
			t.Fatalf("want 50%%, got %d", f.Progress())
		}
		if f.Done() {
			t.Fatal("job with in_progress task is not done")
		}
	})

	t.Run("404 maps to ErrNotFound", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).GetFile(context.Background(), "nope")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("want ErrNotFound, got %v", err)
		}
	})

	t.Run("empty id rejected locally", func(t *testing.T) {
		_, err := newTestClient("http://127.0.0.1:0").GetFile(context.Background(), "")
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("want ErrInvalidArgument, got %v", err)
		}
	})
}

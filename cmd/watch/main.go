// File: cmd/watch/main.go
//
// Command watch follows a generation job from the terminal, the same way
// the success and job-status pages do in a browser.
//
//	watch -base https://app.example.com -session cs_test_123
//	watch -provider-url https://api.example.com -token $TOKEN -file f_abc
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fortunto2/superduperai-landing-sub000/internal/config"
	"github.com/fortunto2/superduperai-landing-sub000/internal/infra/generation"
	"github.com/fortunto2/superduperai-landing-sub000/internal/watcher"
)

func main() {
	base := flag.String("base", "http://localhost:8080", "status API base URL")
	app := flag.String("app", "", "public app base URL for redirect links (defaults to -base)")
	session := flag.String("session", "", "checkout session id to wait on")
	providerURL := flag.String("provider-url", "", "generation provider base URL (for -file)")
	token := flag.String("token", "", "generation provider token (for -file)")
	fileID := flag.String("file", "", "generation file id to track")
	interval := flag.Duration("interval", 0, "poll interval (0 = per-mode default)")
	wait := flag.Duration("wait", 60*time.Second, "how long to wait for a session before giving up")
	flag.Parse()

	if (*session == "") == (*fileID == "") {
		log.Fatal("exactly one of -session or -file is required")
	}
	if *app == "" {
		*app = *base
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		<-sigc
		cancel()
	}()

	if *session != "" {
		watchSession(ctx, *base, *app, *session, *interval, *wait)
		return
	}
	watchFile(ctx, *providerURL, *token, *fileID, *interval)
}

func watchSession(ctx context.Context, base, app, session string, interval, wait time.Duration) {
	api := watcher.NewAPIClient(base)
	w := watcher.NewSessionWatcher(api.StatusFetch(session), app, interval, wait,
		watcher.WithOnRedirect(func(url string) {
			fmt.Printf("ready: %s\n", url)
		}))

	res, err := w.Watch(ctx)
	if err != nil {
		log.Fatalf("watch session: %v", err)
	}
	switch res.Outcome {
	case watcher.OutcomeRedirect:
		fmt.Printf("file id: %s\n", res.FileID)
	case watcher.OutcomeError:
		fmt.Printf("failed: %s\nretry at %s\n", res.Message, res.RedirectURL)
		os.Exit(1)
	case watcher.OutcomeTimeout:
		fmt.Printf("timed out: %s\nsee %s\n", res.Message, res.RedirectURL)
		os.Exit(1)
	}
}

func watchFile(ctx context.Context, providerURL, token, fileID string, interval time.Duration) {
	if providerURL == "" || token == "" {
		log.Fatal("-provider-url and -token are required with -file")
	}
	gen := generation.NewClient(&config.GenerationConfig{BaseURL: providerURL, Token: token})
	w := watcher.NewJobWatcher(gen, interval,
		watcher.WithOnProgress(func(pct int) {
			fmt.Printf("progress: %d%%\n", pct)
		}))

	f, err := w.Watch(ctx, fileID)
	if err != nil {
		log.Fatalf("watch file: %v", err)
	}
	if f.Failed() {
		fmt.Println("generation failed")
		os.Exit(1)
	}
	fmt.Printf("done: %s\n", f.URL)
}

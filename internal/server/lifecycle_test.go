package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/jackzampolin/promptvault/internal/api"
	"github.com/jackzampolin/promptvault/internal/home"
	"github.com/jackzampolin/promptvault/internal/types"
)

// freePort returns a port that was free a moment ago.
func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	defer l.Close()
	_, port, _ := net.SplitHostPort(l.Addr().String())
	return port
}

// waitForServer polls /health until the server responds or timeout expires.
func waitForServer(ctx context.Context, baseURL string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	return fmt.Errorf("server at %s not ready after %s", baseURL, timeout)
}

// startServer runs srv until the returned stop function is called.
func startServer(t *testing.T, srv *Server) (stop func() error) {
	t.Helper()
	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	if err := waitForServer(ctx, "http://"+srv.Addr(), 10*time.Second); err != nil {
		cancel()
		t.Fatalf("server did not start: %v", err)
	}
	return func() error {
		cancel()
		select {
		case err := <-errCh:
			return err
		case <-time.After(10 * time.Second):
			t.Fatal("server did not shut down within timeout")
			return nil
		}
	}
}

func TestServer_FullLifecycle(t *testing.T) {
	h, _ := home.New(t.TempDir())
	if err := h.EnsureExists(); err != nil {
		t.Fatal(err)
	}
	port := freePort(t)

	srv, err := New(Config{Host: "127.0.0.1", Port: port, Home: h, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := startServer(t, srv)

	if !srv.IsRunning() {
		t.Error("IsRunning() = false, want true")
	}

	client := api.NewClient("http://" + srv.Addr())
	var created types.Prompt
	in := types.PromptInput{Title: "Persisted", Content: "survives restart", Models: []string{"Claude"}, Category: "Other"}
	if err := client.Post(t.Context(), "/api/prompts", in, &created); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := stop(); err != nil {
		t.Fatalf("Start() returned error: %v", err)
	}
	if srv.IsRunning() {
		t.Error("IsRunning() = true after shutdown, want false")
	}

	// A second server over the same home sees the prompt.
	srv2, err := New(Config{Host: "127.0.0.1", Port: freePort(t), Home: h, Logger: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}
	stop2 := startServer(t, srv2)
	defer stop2()

	var got types.Prompt
	if err := api.NewClient("http://"+srv2.Addr()).Get(t.Context(), "/api/prompts/"+created.ID, &got); err != nil {
		t.Fatalf("get after restart: %v", err)
	}
	if got.Title != "Persisted" {
		t.Errorf("title = %q, want Persisted", got.Title)
	}
}

func TestServer_DoubleStart(t *testing.T) {
	h, _ := home.New(t.TempDir())
	srv, err := New(Config{Host: "127.0.0.1", Port: freePort(t), Home: h, Logger: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}
	stop := startServer(t, srv)
	defer stop()

	if err := srv.Start(t.Context()); err == nil {
		t.Error("second Start() should fail while running")
	}
}

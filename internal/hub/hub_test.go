package hub

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func readLine(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	line, err := r.ReadString('\n')
	if err != nil {
		t.Fatalf("reading stream: %v", err)
	}
	return strings.TrimRight(line, "\n")
}

func TestHubStreamsNamedEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New()
	go h.Run(ctx)

	srv := httptest.NewServer(h)
	defer srv.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected text/event-stream, got %q", ct)
	}

	r := bufio.NewReader(resp.Body)
	if line := readLine(t, r); line != ": connected" {
		t.Fatalf("expected connected comment, got %q", line)
	}
	readLine(t, r)

	if got := h.ClientCount(); got != 1 {
		t.Errorf("expected 1 client, got %d", got)
	}

	h.Broadcast("alias-updated", map[string]string{"ip": "10.10.0.5"})

	if line := readLine(t, r); line != "event: alias-updated" {
		t.Errorf("expected event line, got %q", line)
	}
	if line := readLine(t, r); line != `data: {"ip":"10.10.0.5"}` {
		t.Errorf("expected data line, got %q", line)
	}
}

func TestHubClosesStreamsOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	h := New()
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	defer resp.Body.Close()

	r := bufio.NewReader(resp.Body)
	readLine(t, r)
	readLine(t, r)

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}

	if got := h.ClientCount(); got != 0 {
		t.Errorf("expected no clients after shutdown, got %d", got)
	}
}

func TestEncode(t *testing.T) {
	frame, err := encode(Message{Name: "presets-saved", Data: map[string]int{"count": 2}})
	if err != nil {
		t.Fatal(err)
	}
	want := "event: presets-saved\ndata: {\"count\":2}\n\n"
	if string(frame) != want {
		t.Errorf("expected %q, got %q", want, frame)
	}
}

package server

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	srv := New(":0", http.NotFoundHandler(), Timeouts{Write: 3 * time.Second})
	if srv.ReadTimeout != DefaultRead || srv.IdleTimeout != DefaultIdle {
		t.Fatalf("defaults not applied: %+v", srv)
	}
	if srv.WriteTimeout != 3*time.Second {
		t.Fatalf("write timeout = %v", srv.WriteTimeout)
	}
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	srv := New("127.0.0.1:0", http.NotFoundHandler(), Timeouts{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Run(ctx, srv) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

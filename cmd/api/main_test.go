package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"
)

func TestServe_WaitsForInFlightRequests(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	entered := make(chan struct{})
	unblock := make(chan struct{})
	handlerDone := make(chan struct{})
	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			defer close(handlerDone)
			close(entered)
			<-unblock
			w.WriteHeader(http.StatusNoContent)
		}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	served := make(chan error, 1)
	go func() {
		served <- serve(ctx, server, ln, 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	}()

	clientDone := make(chan struct{})
	go func() {
		defer close(clientDone)
		resp, err := http.Get("http://" + ln.Addr().String())
		if err == nil {
			_ = resp.Body.Close()
		}
	}()

	<-entered
	cancel()

	select {
	case err = <-served:
		t.Fatalf("serve() returned %v while a request was in flight", err)
	case <-time.After(100 * time.Millisecond):
	}

	close(unblock)
	select {
	case err = <-served:
		if err != nil {
			t.Errorf("serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve() did not return after the request finished")
	}
	select {
	case <-handlerDone:
	default:
		t.Error("serve() returned before the handler finished")
	}
	<-clientDone
}

func TestServe_ListenerError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	_ = ln.Close()

	server := &http.Server{ReadHeaderTimeout: time.Second, Handler: http.NotFoundHandler()}
	if err = serve(context.Background(), server, ln, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil))); err == nil {
		t.Error("serve() error = nil, want listener error")
	}
}

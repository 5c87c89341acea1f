// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func waitForCount(t *testing.T, what string, count func() int32, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if count() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("%s: count %d, want at least %d", what, count(), want)
}

func TestSupervisorTreeConstruction(t *testing.T) {
	t.Run("creates hierarchical supervisor tree", func(t *testing.T) {
		tree, err := NewSupervisorTree(quietLogger(), TreeConfig{
			FailureThreshold: 5,
			FailureBackoff:   time.Second,
			ShutdownTimeout:  10 * time.Second,
		})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}
		if tree.Root() == nil {
			t.Error("root supervisor should not be nil")
		}
	})

	t.Run("applies default values for zero config", func(t *testing.T) {
		tree, err := NewSupervisorTree(quietLogger(), TreeConfig{})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}
		if tree.config != DefaultTreeConfig() {
			t.Errorf("config = %+v, want defaults %+v", tree.config, DefaultTreeConfig())
		}
	})
}

func TestSupervisorTreeLifecycle(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureBackoff:  100 * time.Millisecond,
		ShutdownTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}

	feedSvc := NewMockService("mock-feed")
	apiSvc := NewMockService("mock-api")
	tree.AddFeedService(feedSvc)
	tree.AddAPIService(apiSvc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	waitForCount(t, "feed service start", feedSvc.StartCount, 1)
	waitForCount(t, "api service start", apiSvc.StartCount, 1)

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not stop in time")
	}

	if feedSvc.StopCount() != feedSvc.StartCount() || apiSvc.StopCount() != apiSvc.StartCount() {
		t.Error("every started service should have stopped")
	}
	report, err := tree.UnstoppedServiceReport()
	if err != nil {
		t.Fatalf("UnstoppedServiceReport: %v", err)
	}
	if len(report) != 0 {
		t.Errorf("unstopped services: %v", report)
	}
}

func TestSupervisorTreeFailureIsolation(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	failing := NewMockService("flaky-feed")
	failing.SetFailCount(3)
	apiSvc := NewMockService("mock-api")
	tree.AddFeedService(failing)
	tree.AddAPIService(apiSvc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	// Three failures, then a fourth start that stays up.
	waitForCount(t, "feed restarts", failing.StartCount, 4)
	if got := apiSvc.StartCount(); got != 1 {
		t.Errorf("api service started %d times, feed failures must not restart it", got)
	}

	cancel()
	<-errCh
}

func TestSupervisorTreeDoNotRestart(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureBackoff:  10 * time.Millisecond,
		ShutdownTimeout: time.Second,
	})

	oneShot := NewMockService("one-shot")
	oneShot.SetError(suture.ErrDoNotRestart)
	tree.AddFeedService(oneShot)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	waitForCount(t, "one-shot start", oneShot.StartCount, 1)
	time.Sleep(100 * time.Millisecond)
	if got := oneShot.StartCount(); got != 1 {
		t.Errorf("service returning ErrDoNotRestart was started %d times", got)
	}

	cancel()
	<-errCh
}

func TestAwaitStopReturnsAfterShutdown(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureBackoff:  100 * time.Millisecond,
		ShutdownTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}
	svc := NewMockService("mock-api")
	tree.AddAPIService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)
	waitForCount(t, "service start", svc.StartCount, 1)
	cancel()

	done := make(chan error, 1)
	go func() { done <- AwaitStop(errCh) }()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("AwaitStop: expected nil after cancel, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("AwaitStop did not return after shutdown")
	}
}

func TestAwaitStopPropagatesError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"clean stop", nil, nil},
		{"canceled", context.Canceled, nil},
		{"wrapped cancel", fmt.Errorf("serve: %w", context.Canceled), nil},
		{"failure", errTreeFailed, errTreeFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Never closed, like the channel from ServeBackground.
			errCh := make(chan error, 1)
			errCh <- tt.in
			if got := AwaitStop(errCh); !errors.Is(got, tt.want) || (tt.want == nil && got != nil) {
				t.Errorf("AwaitStop(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

var errTreeFailed = errors.New("tree failed")

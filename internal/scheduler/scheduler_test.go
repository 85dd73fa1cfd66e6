package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingPruner struct {
	mu    sync.Mutex
	calls []time.Duration
	err   error
}

func (p *recordingPruner) Prune(_ context.Context, maxAge time.Duration) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, maxAge)
	return 1, p.err
}

func (p *recordingPruner) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func TestStartDisabledRetention(t *testing.T) {
	p := &recordingPruner{}
	s := New(p, 0, time.Minute, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	if n := len(s.scheduler.Jobs()); n != 0 {
		t.Fatalf("expected no jobs, got %d", n)
	}
}

func TestStartSchedulesSweep(t *testing.T) {
	p := &recordingPruner{}
	s := New(p, 24*time.Hour, 0, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	if n := len(s.scheduler.Jobs()); n != 1 {
		t.Fatalf("expected one job, got %d", n)
	}

	// gocron runs the job immediately on start
	deadline := time.Now().Add(2 * time.Second)
	for p.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if p.count() == 0 {
		t.Fatalf("expected sweep to run")
	}
}

func TestSweepPassesRetention(t *testing.T) {
	p := &recordingPruner{err: errors.New("db gone")}
	s := New(p, 6*time.Hour, time.Hour, nil)

	s.Sweep()

	if p.count() != 1 || p.calls[0] != 6*time.Hour {
		t.Fatalf("unexpected prune calls: %v", p.calls)
	}
}

package driver

import (
	"context"
	"testing"
	"time"
)

func TestLoopRunsOnlyLatestRequest(t *testing.T) {
	l := NewLoop(60)
	var calls []string
	l.RequestFrame(func() { calls = append(calls, "a") })
	l.RequestFrame(func() { calls = append(calls, "b") })

	if !l.Fire() {
		t.Fatal("expected a pending frame")
	}
	if l.Fire() {
		t.Fatal("expected no pending frame after firing")
	}
	if len(calls) != 1 || calls[0] != "b" {
		t.Fatalf("calls = %v, want [b]", calls)
	}
}

func TestLoopCancel(t *testing.T) {
	l := NewLoop(60)
	stale := l.RequestFrame(func() { t.Fatal("cancelled frame ran") })
	stale()
	if l.Fire() {
		t.Fatal("expected cancelled frame to be dropped")
	}

	fired := false
	cancelOld := l.RequestFrame(func() {})
	l.RequestFrame(func() { fired = true })
	cancelOld() // must not drop the newer request
	l.Fire()
	if !fired {
		t.Fatal("expected newer request to survive an old cancel")
	}
}

func TestLoopRunDrivesDriver(t *testing.T) {
	l := NewLoop(200)
	r := &fakeRenderer{}
	d := New(r, Options{Scheduler: l})
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	l.Run(ctx)
	d.Dispose()

	if len(r.applied) < 3 {
		t.Fatalf("applied %d frames in 100ms at 200fps", len(r.applied))
	}
}

package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingObserver struct {
	mu   sync.Mutex
	runs []string
}

func (r *recordingObserver) ObserveJob(jobType string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	r.runs = append(r.runs, jobType+":"+outcome)
}

func (r *recordingObserver) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.runs...)
}

func TestRunNowReturnsDetails(t *testing.T) {
	observer := &recordingObserver{}
	svc := New(1, observer)

	details, err := svc.RunNow(context.Background(), Job{Type: "count", Run: func(context.Context) (any, error) {
		return 3, nil
	}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if details != 3 {
		t.Fatalf("expected details 3, got %v", details)
	}

	boom := errors.New("boom")
	if _, err := svc.RunNow(context.Background(), Job{Type: "fail", Run: func(context.Context) (any, error) {
		return nil, boom
	}}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	runs := observer.snapshot()
	if len(runs) != 2 || runs[0] != "count:ok" || runs[1] != "fail:failed" {
		t.Fatalf("unexpected observed runs: %v", runs)
	}
}

func TestEnqueueRunsOnWorker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := New(4, nil)
	svc.Start(ctx)

	done := make(chan struct{})
	ok := svc.Enqueue(Job{Type: "signal", Run: func(context.Context) (any, error) {
		close(done)
		return nil, nil
	}})
	if !ok {
		t.Fatal("expected job to be queued")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queued job did not run")
	}
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	svc := New(1, nil)
	noop := Job{Type: "noop", Run: func(context.Context) (any, error) { return nil, nil }}

	if !svc.Enqueue(noop) {
		t.Fatal("expected first job to be queued")
	}
	if svc.Enqueue(noop) {
		t.Fatal("expected second job to be dropped without a worker")
	}
}

func TestScheduleRepeats(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := New(8, nil)
	svc.Start(ctx)

	var mu sync.Mutex
	runs := 0
	reached := make(chan struct{})
	svc.Schedule(ctx, 10*time.Millisecond, Job{Type: "tick", Run: func(context.Context) (any, error) {
		mu.Lock()
		defer mu.Unlock()
		runs++
		if runs == 3 {
			close(reached)
		}
		return nil, nil
	}})

	select {
	case <-reached:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled job did not repeat")
	}
}

package reconcile_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"overloader/internal/deload"
	"overloader/internal/intake"
	"overloader/internal/overload"
	"overloader/internal/reconcile"
	"overloader/internal/services"
	"overloader/internal/services/hevy"
	"overloader/internal/services/llm"
	"overloader/internal/testsupport"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

type countingProcessor struct {
	mu      sync.Mutex
	calls   []string
	fail    map[string]bool
	block   chan struct{}
	entered chan struct{}
}

func (c *countingProcessor) ProcessWorkout(ctx context.Context, id string) (*intake.Result, error) {
	c.mu.Lock()
	c.calls = append(c.calls, id)
	c.mu.Unlock()
	if c.entered != nil {
		c.entered <- struct{}{}
	}
	if c.block != nil {
		<-c.block
	}
	if c.fail[id] {
		return nil, services.Wrap(services.ErrGeneration, "test", "process", id, errors.New("boom"))
	}
	return &intake.Result{WorkoutID: id}, nil
}

func (c *countingProcessor) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func TestRecentWorkoutsFiltersByCreatedAt(t *testing.T) {
	workouts := []hevy.Workout{
		{ID: "fresh", CreatedAt: "2026-10-15T08:00:00Z"},
		{ID: "fractional", CreatedAt: "2026-10-15T11:59:59.123+02:00"},
		{ID: "stale", CreatedAt: "2026-10-13T08:00:00Z"},
		{ID: "boundary", CreatedAt: "2026-10-14T12:00:00Z"},
		{ID: "garbage", CreatedAt: "yesterday"},
		{ID: "missing"},
	}
	got := reconcile.RecentWorkouts(workouts, now.Add(-24*time.Hour))
	if len(got) != 2 || got[0].ID != "fresh" || got[1].ID != "fractional" {
		t.Fatalf("unexpected recent set: %+v", got)
	}
}

func TestRunOnceSkipsProcessedAndCountsFailures(t *testing.T) {
	tracker := testsupport.NewTracker()
	tracker.AddWorkout(hevy.Workout{ID: "a", CreatedAt: "2026-10-15T10:00:00Z"})
	tracker.AddWorkout(hevy.Workout{ID: "b", CreatedAt: "2026-10-15T09:00:00Z"})
	tracker.AddWorkout(hevy.Workout{ID: "c", CreatedAt: "2026-10-15T08:00:00Z"})
	tracker.AddWorkout(hevy.Workout{ID: "old", CreatedAt: "2026-10-01T08:00:00Z"})

	store := intake.NewStore()
	store.MarkProcessed("a")
	processor := &countingProcessor{fail: map[string]bool{"c": true}}
	scheduler := reconcile.New(tracker, processor, store, reconcile.WithClock(clock))

	summary, err := scheduler.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if summary.Fetched != 4 || summary.Recent != 3 || summary.Skipped != 1 || summary.Processed != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.RunID == "" {
		t.Fatal("expected run id")
	}
	if calls := processor.Calls(); len(calls) != 2 || calls[0] != "b" || calls[1] != "c" {
		t.Fatalf("unexpected processing order: %v", calls)
	}
	if last, ok := scheduler.LastSummary(); !ok || last.RunID != summary.RunID {
		t.Fatalf("expected last summary to be recorded, got %+v", last)
	}
	if got := tracker.ListCalls(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("expected only page 1, got %v", got)
	}
}

func TestSecondPassDoesNotReprocess(t *testing.T) {
	tracker := testsupport.NewTracker()
	tracker.AddRoutine(hevy.Routine{ID: "R1", Title: "Day 1 - Week 2"})
	tracker.AddWorkout(hevy.Workout{ID: "w-1", Title: "Day 1 - Week 2", RoutineID: "R1", CreatedAt: "2026-10-15T10:00:00Z"})

	generator := llm.NewMock("")
	store := intake.NewStore()
	service := overload.NewService(generator, deload.NewBuilder(tracker), nil)
	processor := intake.NewProcessor(tracker, service, store)
	scheduler := reconcile.New(tracker, processor, store, reconcile.WithClock(clock))

	for i := 0; i < 2; i++ {
		if _, err := scheduler.RunOnce(context.Background()); err != nil {
			t.Fatalf("RunOnce #%d: %v", i+1, err)
		}
	}
	if got := len(generator.Prompts()); got != 1 {
		t.Fatalf("expected one model call across two passes, got %d", got)
	}
	if got := tracker.WorkoutCalls("w-1"); got != 1 {
		t.Fatalf("expected one workout fetch, got %d", got)
	}
	last, _ := scheduler.LastSummary()
	if last.Skipped != 1 || last.Processed != 0 {
		t.Fatalf("unexpected second summary: %+v", last)
	}
}

func TestRunOnceListFailure(t *testing.T) {
	tracker := testsupport.NewTracker()
	tracker.ListWorkoutsErr = errors.New("connection refused")
	scheduler := reconcile.New(tracker, &countingProcessor{}, nil, reconcile.WithClock(clock))

	summary, err := scheduler.RunOnce(context.Background())
	if !errors.Is(err, services.ErrUpstreamFetch) {
		t.Fatalf("expected ErrUpstreamFetch, got %v", err)
	}
	if summary.Error == "" {
		t.Fatal("expected error recorded on summary")
	}
	if last, ok := scheduler.LastSummary(); !ok || last.Error == "" {
		t.Fatal("failed run must still be recorded")
	}
}

func TestRunOnceRejectsOverlap(t *testing.T) {
	tracker := testsupport.NewTracker()
	tracker.AddWorkout(hevy.Workout{ID: "slow", CreatedAt: "2026-10-15T10:00:00Z"})
	processor := &countingProcessor{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	scheduler := reconcile.New(tracker, processor, nil, reconcile.WithClock(clock))

	done := make(chan error, 1)
	go func() {
		_, err := scheduler.RunOnce(context.Background())
		done <- err
	}()
	<-processor.entered

	if _, err := scheduler.RunOnce(context.Background()); !errors.Is(err, reconcile.ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
	close(processor.block)
	if err := <-done; err != nil {
		t.Fatalf("first run: %v", err)
	}
}

func TestStartRunsImmediatelyAndStops(t *testing.T) {
	tracker := testsupport.NewTracker()
	tracker.AddWorkout(hevy.Workout{ID: "w-1", CreatedAt: "2026-10-15T10:00:00Z"})
	processor := &countingProcessor{entered: make(chan struct{}, 4)}
	scheduler := reconcile.New(tracker, processor, nil,
		reconcile.WithClock(clock),
		reconcile.WithInterval(time.Hour),
	)

	if err := scheduler.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := scheduler.Start(context.Background()); err == nil {
		t.Fatal("expected second Start to fail")
	}
	select {
	case <-processor.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("expected an immediate run on start")
	}
	scheduler.Stop()
	if scheduler.Running() {
		t.Fatal("expected scheduler to be stopped")
	}
	scheduler.Stop()
}

func TestStartWithoutImmediateRun(t *testing.T) {
	tracker := testsupport.NewTracker()
	scheduler := reconcile.New(tracker, &countingProcessor{}, nil,
		reconcile.WithRunOnStart(false),
		reconcile.WithInterval(time.Hour),
	)
	if err := scheduler.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	scheduler.Stop()
	if calls := tracker.ListCalls(); len(calls) != 0 {
		t.Fatalf("expected no runs, got %v", calls)
	}
}

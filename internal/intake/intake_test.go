package intake_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"overloader/internal/deload"
	"overloader/internal/intake"
	"overloader/internal/overload"
	"overloader/internal/services"
	"overloader/internal/services/hevy"
	"overloader/internal/services/llm"
	"overloader/internal/testsupport"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, string) (string, error) {
	return "", errors.New("model unavailable")
}

func seededTracker() *testsupport.Tracker {
	tracker := testsupport.NewTracker()
	tracker.AddRoutine(hevy.Routine{ID: "R1", Title: "Day 1 - Week 2"})
	tracker.AddWorkout(hevy.Workout{ID: "w-1", Title: "Day 1 - Week 2", RoutineID: "R1"})
	tracker.AddWorkout(hevy.Workout{ID: "w-free", Title: "Evening run"})
	return tracker
}

func newProcessor(tracker *testsupport.Tracker, generator llm.Generator, opts ...intake.ProcessorOption) (*intake.Processor, *intake.Store) {
	store := intake.NewStore()
	service := overload.NewService(generator, deload.NewBuilder(tracker), nil)
	return intake.NewProcessor(tracker, service, store, opts...), store
}

func TestStoreMarkProcessedIsCheckAndInsert(t *testing.T) {
	store := intake.NewStore()
	var wg sync.WaitGroup
	var added atomic.Int32
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.MarkProcessed("w-1") {
				added.Add(1)
			}
		}()
	}
	wg.Wait()
	if added.Load() != 1 {
		t.Fatalf("expected exactly one insert, got %d", added.Load())
	}
	if !store.Contains("w-1") || store.Len() != 1 {
		t.Fatalf("unexpected store state: contains=%v len=%d", store.Contains("w-1"), store.Len())
	}
}

func TestProcessWorkoutUpdatesRoutine(t *testing.T) {
	tracker := seededTracker()
	processor, store := newProcessor(tracker, llm.NewMock(""))

	result, err := processor.ProcessWorkout(context.Background(), "w-1")
	if err != nil {
		t.Fatalf("ProcessWorkout: %v", err)
	}
	if result.Outcome != intake.OutcomeUpdated || result.Routine == nil || result.Routine.Title != "Day 1 - Week 3" {
		t.Fatalf("unexpected result: %+v", result)
	}
	updates := tracker.Updates("R1")
	if len(updates) != 1 || updates[0].Title == nil || *updates[0].Title != "Day 1 - Week 3" {
		t.Fatalf("unexpected write-back: %+v", updates)
	}
	if notes := updates[0].Exercises[0].Notes; notes == nil || *notes != "1 sets\nRPE 8\n75x5" {
		t.Fatalf("unexpected notes: %v", notes)
	}
	if !store.Contains("w-1") {
		t.Fatal("expected workout to be marked processed")
	}
}

func TestProcessWorkoutWithoutRoutineShortCircuits(t *testing.T) {
	tracker := seededTracker()
	generator := llm.NewMock("")
	processor, store := newProcessor(tracker, generator)

	result, err := processor.ProcessWorkout(context.Background(), "w-free")
	if err != nil {
		t.Fatalf("ProcessWorkout: %v", err)
	}
	if result.Outcome != intake.OutcomeNoRoutine {
		t.Fatalf("unexpected outcome %q", result.Outcome)
	}
	if len(generator.Prompts()) != 0 {
		t.Fatal("model must not be called for a workout without routine")
	}
	if !store.Contains("w-free") {
		t.Fatal("short-circuited workout must be marked processed")
	}
}

func TestProcessWorkoutTransientFailuresLeaveIDUnmarked(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(*testsupport.Tracker)
		generator llm.Generator
		marker    error
	}{
		{"workout fetch", func(tr *testsupport.Tracker) { tr.GetWorkoutErr = errors.New("timeout") }, llm.NewMock(""), services.ErrUpstreamFetch},
		{"routine fetch", func(tr *testsupport.Tracker) { tr.GetRoutineErr = errors.New("timeout") }, llm.NewMock(""), services.ErrUpstreamFetch},
		{"generation", func(*testsupport.Tracker) {}, failingGenerator{}, services.ErrGeneration},
		{"malformed", func(*testsupport.Tracker) {}, llm.NewMock("no json here"), services.ErrMalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := seededTracker()
			tt.setup(tracker)
			processor, store := newProcessor(tracker, tt.generator)

			_, err := processor.ProcessWorkout(context.Background(), "w-1")
			if !errors.Is(err, tt.marker) {
				t.Fatalf("expected %v, got %v", tt.marker, err)
			}
			if store.Contains("w-1") {
				t.Fatal("transient failure must not mark the workout processed")
			}
			if len(tracker.Updates("R1")) != 0 {
				t.Fatal("no write-back expected")
			}
		})
	}
}

func TestProcessWorkoutWriteBackFailureStillMarks(t *testing.T) {
	tracker := seededTracker()
	tracker.UpdateErr = &hevy.StatusError{StatusCode: 500, Body: "boom"}
	processor, store := newProcessor(tracker, llm.NewMock(""))

	_, err := processor.ProcessWorkout(context.Background(), "w-1")
	if !errors.Is(err, services.ErrWriteBack) || !services.IsTerminal(err) {
		t.Fatalf("expected terminal write-back error, got %v", err)
	}
	if _, ok := hevy.AsStatusError(err); !ok {
		t.Fatal("status error must stay reachable")
	}
	if !store.Contains("w-1") {
		t.Fatal("write-back failure must still mark the workout processed")
	}
}

func TestProcessWorkoutDryRun(t *testing.T) {
	tracker := seededTracker()
	processor, store := newProcessor(tracker, llm.NewMock(""), intake.WithDryRun(true))

	result, err := processor.ProcessWorkout(context.Background(), "w-1")
	if err != nil {
		t.Fatalf("ProcessWorkout: %v", err)
	}
	if result.Outcome != intake.OutcomeDryRun || result.Update.Title == nil {
		t.Fatalf("unexpected dry-run result: %+v", result)
	}
	if len(tracker.Updates("R1")) != 0 || store.Contains("w-1") {
		t.Fatal("dry run must not write or mark")
	}
}

func TestProcessWorkoutRejectsEmptyID(t *testing.T) {
	processor, _ := newProcessor(seededTracker(), llm.NewMock(""))
	if _, err := processor.ProcessWorkout(context.Background(), "  "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTaskSetBoundsConcurrency(t *testing.T) {
	tasks := intake.NewTaskSet(2, nil)
	var running, peak atomic.Int32
	release := make(chan struct{})

	for i := 0; i < 6; i++ {
		err := tasks.Go(context.Background(), func(context.Context) {
			n := running.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			<-release
			running.Add(-1)
		})
		if err != nil {
			t.Fatalf("Go: %v", err)
		}
	}
	if tasks.InFlight() != 6 {
		t.Fatalf("expected 6 in flight, got %d", tasks.InFlight())
	}
	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tasks.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if peak.Load() > 2 {
		t.Fatalf("expected at most 2 concurrent tasks, saw %d", peak.Load())
	}
	if tasks.InFlight() != 0 || tasks.Started() != 6 {
		t.Fatalf("unexpected counters: in_flight=%d started=%d", tasks.InFlight(), tasks.Started())
	}
}

func TestTaskSetClosedRejects(t *testing.T) {
	tasks := intake.NewTaskSet(1, nil)
	tasks.Close()
	if err := tasks.Go(context.Background(), func(context.Context) {}); !errors.Is(err, intake.ErrTaskSetClosed) {
		t.Fatalf("expected ErrTaskSetClosed, got %v", err)
	}
}

func TestTaskSetRecoversPanics(t *testing.T) {
	tasks := intake.NewTaskSet(1, nil)
	if err := tasks.Go(context.Background(), func(context.Context) { panic("boom") }); err != nil {
		t.Fatalf("Go: %v", err)
	}
	if err := tasks.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func waitForUpdates(t *testing.T, tasks *intake.TaskSet) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tasks.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func TestDispatcherReprocessesDuplicateDeliveriesByDefault(t *testing.T) {
	tracker := seededTracker()
	processor, _ := newProcessor(tracker, llm.NewMock(""))
	tasks := intake.NewTaskSet(1, nil)
	dispatcher := intake.NewDispatcher(context.Background(), processor, tasks)

	for i := 0; i < 2; i++ {
		ticket, err := dispatcher.Submit(context.Background(), "w-1", services.TriggerWebhook)
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if ticket.Skipped || ticket.CorrelationID == "" {
			t.Fatalf("unexpected ticket: %+v", ticket)
		}
		waitForUpdates(t, tasks)
	}
	if got := len(tracker.Updates("R1")); got != 2 {
		t.Fatalf("expected both deliveries to write back, got %d", got)
	}
}

func TestDispatcherWebhookDedupOptIn(t *testing.T) {
	tracker := seededTracker()
	processor, _ := newProcessor(tracker, llm.NewMock(""))
	tasks := intake.NewTaskSet(1, nil)
	dispatcher := intake.NewDispatcher(context.Background(), processor, tasks, intake.WithWebhookDedup(true))

	if _, err := dispatcher.Submit(context.Background(), "w-1", services.TriggerWebhook); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitForUpdates(t, tasks)

	ticket, err := dispatcher.Submit(context.Background(), "w-1", services.TriggerWebhook)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !ticket.Skipped {
		t.Fatal("expected duplicate delivery to be skipped")
	}
	waitForUpdates(t, tasks)
	if got := len(tracker.Updates("R1")); got != 1 {
		t.Fatalf("expected a single write-back, got %d", got)
	}
}

func TestDispatcherTaskOutlivesRequestContext(t *testing.T) {
	tracker := seededTracker()
	processor, store := newProcessor(tracker, llm.NewMock(""))
	tasks := intake.NewTaskSet(1, nil)
	dispatcher := intake.NewDispatcher(context.Background(), processor, tasks)

	reqCtx, cancel := context.WithCancel(context.Background())
	if _, err := dispatcher.Submit(reqCtx, "w-1", services.TriggerWebhook); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	cancel()
	waitForUpdates(t, tasks)
	if !store.Contains("w-1") {
		t.Fatal("processing must not be tied to the request context")
	}
}

func TestDispatcherRejectsEmptyID(t *testing.T) {
	processor, _ := newProcessor(seededTracker(), llm.NewMock(""))
	dispatcher := intake.NewDispatcher(context.Background(), processor, intake.NewTaskSet(1, nil))
	if _, err := dispatcher.Submit(context.Background(), "", services.TriggerWebhook); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

package testsupport

import (
	"context"
	"fmt"
	"sync"

	"overloader/internal/services/hevy"
)

// Tracker is an in-memory hevy.Tracker for tests. History is served newest
// first in pages; per-operation errors can be injected.
type Tracker struct {
	mu sync.Mutex

	Workouts map[string]*hevy.Workout
	Routines map[string]*hevy.Routine
	History  []hevy.Workout

	GetWorkoutErr   error
	GetRoutineErr   error
	UpdateErr       error
	ListWorkoutsErr error

	workoutCalls map[string]int
	listCalls    []int
	updates      map[string][]hevy.RoutineUpdate
}

var _ hevy.Tracker = (*Tracker)(nil)

// NewTracker returns an empty fake tracker.
func NewTracker() *Tracker {
	return &Tracker{
		Workouts:     make(map[string]*hevy.Workout),
		Routines:     make(map[string]*hevy.Routine),
		workoutCalls: make(map[string]int),
		updates:      make(map[string][]hevy.RoutineUpdate),
	}
}

// AddWorkout registers a workout for GetWorkout and appends it to History.
func (f *Tracker) AddWorkout(w hevy.Workout) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copyW := w
	f.Workouts[w.ID] = &copyW
	f.History = append(f.History, w)
}

// AddRoutine registers a routine.
func (f *Tracker) AddRoutine(r hevy.Routine) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copyR := r
	f.Routines[r.ID] = &copyR
}

func (f *Tracker) GetWorkout(ctx context.Context, id string) (*hevy.Workout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.workoutCalls[id]++
	if f.GetWorkoutErr != nil {
		return nil, f.GetWorkoutErr
	}
	w, ok := f.Workouts[id]
	if !ok {
		return nil, &hevy.StatusError{StatusCode: 404, Body: "workout not found"}
	}
	copyW := *w
	return &copyW, nil
}

func (f *Tracker) ListWorkouts(ctx context.Context, page, pageSize int) (*hevy.WorkoutPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, page)
	if f.ListWorkoutsErr != nil {
		return nil, f.ListWorkoutsErr
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	var workouts []hevy.Workout
	if start < len(f.History) {
		if end > len(f.History) {
			end = len(f.History)
		}
		workouts = append(workouts, f.History[start:end]...)
	}
	pageCount := (len(f.History) + pageSize - 1) / pageSize
	return &hevy.WorkoutPage{
		Page:       page,
		PageSize:   pageSize,
		PageCount:  pageCount,
		TotalCount: len(f.History),
		Workouts:   workouts,
	}, nil
}

func (f *Tracker) GetRoutine(ctx context.Context, id string) (*hevy.Routine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetRoutineErr != nil {
		return nil, f.GetRoutineErr
	}
	r, ok := f.Routines[id]
	if !ok {
		return nil, &hevy.StatusError{StatusCode: 404, Body: fmt.Sprintf("routine %s not found", id)}
	}
	copyR := *r
	return &copyR, nil
}

func (f *Tracker) UpdateRoutine(ctx context.Context, id string, update hevy.RoutineUpdate) (*hevy.Routine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates[id] = append(f.updates[id], update)
	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}
	r, ok := f.Routines[id]
	if !ok {
		return nil, &hevy.StatusError{StatusCode: 404, Body: fmt.Sprintf("routine %s not found", id)}
	}
	if update.Title != nil {
		r.Title = *update.Title
	}
	copyR := *r
	return &copyR, nil
}

// WorkoutCalls reports how often GetWorkout was called for id.
func (f *Tracker) WorkoutCalls(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.workoutCalls[id]
}

// ListCalls returns the pages requested so far.
func (f *Tracker) ListCalls() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.listCalls...)
}

// Updates returns the write-backs received for a routine.
func (f *Tracker) Updates(routineID string) []hevy.RoutineUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]hevy.RoutineUpdate(nil), f.updates[routineID]...)
}

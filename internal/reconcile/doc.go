// Package reconcile runs the periodic catch-up sync.
//
// Every interval (and once at start) the Scheduler reads the newest page of
// workout history, keeps entries created inside the lookback window, skips
// ids already in the dedup store and feeds the rest through the same
// Processor the webhook path uses. Overlapping runs are skipped.
package reconcile

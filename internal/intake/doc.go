// Package intake turns workout ids into routine updates.
//
// Processor runs the fetch → orchestrate → write-back pipeline for one id and
// records terminal outcomes in the DedupStore. Dispatcher is the webhook
// entry point: it detaches each delivery onto a TaskSet, which bounds how many
// pipelines run at once and lets shutdown drain them.
package intake

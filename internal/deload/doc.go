// Package deload decides what guidance the prompt carries when a training
// block ends.
//
// Below week 8 the next week is simply week+1 and no history is read. After
// week 8 the next session is a deload week 1: the builder searches recent
// history first for a week-1 session on the same day, then for a week-7
// session of the same routine, and renders an instruction that scales the
// found reference (or the current weights when nothing is found) to the
// configured intensity.
package deload

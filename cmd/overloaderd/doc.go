// Command overloaderd runs the overloader daemon: the webhook listener, the
// background task set and the periodic sync loop. It is equivalent to
// `overloader serve` for service managers that expect a dedicated binary.
package main

// Package health serves liveness and readiness probes for the long-running
// watch command.
package health

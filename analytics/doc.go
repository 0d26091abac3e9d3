// Package analytics provides core.AnalyticsSink implementations. One event
// is written per turn; write failures are reported to the caller, which logs
// them and never fails the turn.
package analytics

// Package service implements the scan pipeline and identity management.
//
// ScanService validates a range, runs the probe, parses its grepable output
// and merges each host with its alias and last-seen time from the identity
// store. AliasService and PresetService manage operator-owned data.
//
// # Event System
//
// Services publish events via EventBus for real-time updates to connected
// clients via Server-Sent Events (SSE): scan-completed, alias-updated,
// alias-deleted and presets-saved.
package service

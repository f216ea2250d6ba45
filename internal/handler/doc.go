// Package handler implements the HTTP surface of the scanner.
//
// Routes are served by a chi router. Write endpoints take form fields, so a
// plain HTML form can drive them, and every JSON endpoint answers 200 with an
// "ok" flag; failures carry a single "error" string.
//
// # Server-Sent Events
//
// The /events endpoint streams scan-completed, alias-updated, alias-deleted
// and presets-saved events.
package handler

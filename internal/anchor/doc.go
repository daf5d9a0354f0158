// Package anchor remembers the page fragment across a server round-trip.
//
// Saver posts the current fragment to the anchor endpoint when a trigger is
// activated. Restorer runs once when the next page loads: if that page has no
// fragment of its own it asks the endpoint for the remembered one and applies
// it when the page contains a matching element.
//
// Both halves are best effort. Failures of any kind are swallowed and never
// retried; Restorer reports what happened through its Outcome.
package anchor

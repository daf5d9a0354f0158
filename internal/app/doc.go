// Package app provides the application service layer.
//
// Remembers and recalls the per-session anchor. Sits between HTTP handlers and the
// anchor store. Depends on domain interfaces, not concrete implementations.
package app

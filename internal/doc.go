// Package internal documents the calendar server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, and routing
// - calendar: pure month-grid date arithmetic
// - domain: business logic and domain models (events, tags, users)
// - storage: database access, repositories, and blob storage
// - auth, config, metrics, sanitize: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal

// Package cache provides session-scoped materialization of search result
// sets. A result set is identified by its query fingerprint and computed at
// most once per session, so paging through results never repeats retrieval
// and ranking. The storage backing is pluggable; an in-process store with
// per-session caps and TTL is included.
package cache

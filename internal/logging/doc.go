// Package logging provides leveled logging for the manga library service.
//
// Levels, lowest to highest:
//   - DEBUG: per-chapter timestamp decisions, watcher events
//   - INFO: rebuild summaries, startup sections
//   - WARN: degraded units (unreadable chapter, malformed metadata)
//   - ERROR: failed rebuilds
//   - FATAL: startup errors that terminate the process
//
// The level comes from DEBUG (any truthy value selects debug) or LOG_LEVEL.
package logging

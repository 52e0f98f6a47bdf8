// Package workers sizes the worker pool used to scan manga directories in
// parallel. Sizing respects container CPU limits through GOMAXPROCS and can
// be pinned with the SCAN_WORKERS environment variable.
package workers

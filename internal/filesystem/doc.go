/*
Package filesystem wraps the stat and directory-listing calls made while
scanning the content tree with retry logic for NFS stale file handle errors.

Content libraries are frequently served from network mounts. A chapter that is
being replaced on the server side can briefly return ESTALE (errno 116); the
scanner would otherwise drop that chapter from the index until the next
refresh. StatWithRetry and ReadDirWithRetry retry only ESTALE, with capped
exponential backoff, and fail fast on every other error.

	entries, err := filesystem.ReadDirWithRetry(dir, filesystem.DefaultRetryConfig())
	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())

Metrics are reported through an Observer installed once at startup by the
metrics package; with no observer installed nothing is recorded.
*/
package filesystem

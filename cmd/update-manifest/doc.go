// Command update-manifest regenerates the chapter timestamp manifest.
//
// Chapter dates derived from file modification times are lost on every
// fresh checkout. Running this command in CI before deploying pins each
// chapter to the time of the last git commit that touched its directory:
//
//	update-manifest --content content --repo .
//
// The result is written atomically to content/_updated.yml with sorted keys:
//
//	one-piece:
//	  chapter-1: "2024-01-01T10:00:00+00:00"
//	  chapter-2: "2024-02-01T10:00:00+00:00"
//
// Use --dry-run to print the manifest instead.
package main

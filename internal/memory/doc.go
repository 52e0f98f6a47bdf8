// Package memory configures Go's soft memory limit in containers.
//
// GOMAXPROCS follows cgroup CPU limits automatically but GOMEMLIMIT does
// not. Call [ConfigureFromEnv] at the top of main:
//
//   - GOMEMLIMIT: Standard Go variable. Takes precedence when set.
//   - MEMORY_LIMIT: Container limit in bytes, typically from the Downward API.
//   - MEMORY_RATIO: Share of MEMORY_LIMIT for the heap (default 0.85).
//
// Kubernetes example:
//
//	env:
//	  - name: MEMORY_LIMIT
//	    valueFrom:
//	      resourceFieldRef:
//	        resource: limits.memory
package memory

// Package feed renders RSS 2.0, Sitemap 0.9 and robots.txt documents from a
// library index snapshot. Output is deterministic for a given snapshot and
// clock value.
package feed

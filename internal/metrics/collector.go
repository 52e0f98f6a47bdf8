package metrics

import (
	"time"

	"otaku-manga/internal/logging"
)

// StatsProvider reports library counts without triggering a rebuild.
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds library counts for the current index snapshot.
type Stats struct {
	Manga    int
	Chapters int
	Pages    int
	Tags     int
}

// Collector periodically copies library stats into gauges.
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	LibraryMangaTotal.Set(float64(stats.Manga))
	LibraryChaptersTotal.Set(float64(stats.Chapters))
	LibraryPagesTotal.Set(float64(stats.Pages))
	LibraryTagsTotal.Set(float64(stats.Tags))

	logging.Debug("Metrics collected: manga=%d, chapters=%d, pages=%d, tags=%d",
		stats.Manga, stats.Chapters, stats.Pages, stats.Tags)
}

package feed

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"otaku-manga/internal/library"
	"otaku-manga/internal/metrics"
	"otaku-manga/internal/query"
	"otaku-manga/internal/timeutil"
)

// RSSContentType is served with the feed.
const RSSContentType = "application/rss+xml; charset=utf-8"

const atomNamespace = "http://www.w3.org/2005/Atom"

// titleSeparator joins the parts of channel and item titles (an em dash).
const titleSeparator = " \u2014 "

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	AtomNS  string     `xml:"xmlns:atom,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate"`
	AtomLink      atomLink  `xml:"atom:link"`
	Items         []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	GUID        rssGUID `xml:"guid"`
	PubDate     string  `xml:"pubDate"`
	Description cdata   `xml:"description"`
}

type rssGUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink string `xml:"isPermaLink,attr"`
}

type cdata struct {
	Text string `xml:",cdata"`
}

// WriteRSS renders the newest limit chapter updates as an RSS 2.0 channel.
// lastBuildDate is the newest entry's update time, or now for an empty or
// undated library.
func WriteRSS(w io.Writer, idx library.Index, site Site, limit int, now time.Time) error {
	start := time.Now()
	defer func() {
		metrics.FeedRenderDuration.WithLabelValues("rss").Observe(time.Since(start).Seconds())
	}()

	updates := query.RecentUpdates(idx, limit)

	lastBuild := now
	if len(updates) > 0 && !timeutil.IsZero(updates[0].Updated) {
		lastBuild = updates[0].Updated
	}

	doc := rssDocument{
		Version: "2.0",
		AtomNS:  atomNamespace,
		Channel: rssChannel{
			Title:         site.Title + titleSeparator + "Latest Updates",
			Link:          site.RootURL(),
			Description:   "Newest chapter releases and updates",
			Language:      "en",
			LastBuildDate: timeutil.RFC2822(lastBuild),
			AtomLink: atomLink{
				Href: site.FeedURL(),
				Rel:  "self",
				Type: "application/rss+xml",
			},
			Items: make([]rssItem, 0, len(updates)),
		},
	}

	for _, u := range updates {
		link := site.ChapterURL(u.Manga.Slug, u.Chapter.Slug)
		doc.Channel.Items = append(doc.Channel.Items, rssItem{
			Title:   u.Manga.Title + titleSeparator + u.Chapter.DisplayTitle,
			Link:    link,
			GUID:    rssGUID{Value: link, IsPermaLink: "true"},
			PubDate: timeutil.RFC2822(u.Updated),
			Description: cdata{Text: fmt.Sprintf("%s • %s • %d pages",
				u.Manga.Title, u.Chapter.DisplayTitle, len(u.Chapter.Pages))},
		})
	}

	return encode(w, doc)
}

func encode(w io.Writer, v any) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode xml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

package sources

import (
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type xmlFeed struct {
	XMLName xml.Name      `xml:"locations"`
	Entries []xmlLocation `xml:"location"`
}

type xmlLocation struct {
	Name string `xml:"name"`
	// mapName is list-valued by source convention; the first element is
	// the one that matters.
	MapNames []string       `xml:"mapName"`
	Feed     *xmlEventsFeed `xml:"eventsFeedConfig"`
}

type xmlEventsFeed struct {
	ID      string `xml:"id"`
	MenuURL string `xml:"menuURL"`
}

// Secondary fetches locations.xml and decodes it into XMLLocation records
// in document order. A root element other than <locations>, or a document
// with no <location> children, is fatal for the run.
func (l *Loader) Secondary() ([]XMLLocation, error) {
	res, err := l.Client.Get(SecondaryURL)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("locations.xml: unexpected status %d", res.StatusCode)
	}

	var feed xmlFeed
	if err := xml.Unmarshal([]byte(res.Body), &feed); err != nil {
		return nil, fmt.Errorf("locations.xml: %w", err)
	}
	if len(feed.Entries) == 0 {
		return nil, errors.New("locations.xml: no <location> entries")
	}

	out := make([]XMLLocation, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		x := XMLLocation{Name: strings.TrimSpace(e.Name)}
		if len(e.MapNames) > 0 {
			x.MapName = strings.TrimSpace(e.MapNames[0])
		}
		if e.Feed != nil {
			x.HasFeed = true
			x.ID = strings.TrimSpace(e.Feed.ID)
			x.MenuURL = strings.TrimSpace(e.Feed.MenuURL)
		}
		out = append(out, x)
	}
	return out, nil
}

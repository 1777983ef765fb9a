// Package sources fetches and decodes the three dining-location feeds and
// the per-location menu payloads. Decoding is lossless at the record level;
// cross-source validation lives in pkg/recon.
package sources

import (
	"github.com/nyuappdev/dining-audit/pkg/fetch"
)

const (
	PrimaryURL   = "https://s3.amazonaws.com/mobile.nyu.edu/dining/locations.json"
	SecondaryURL = "https://s3.amazonaws.com/mobile.nyu.edu/dining/locations.xml"

	SiteURL     = "https://www.nyu.edu/life/campus-resources/dining/locations-and-menus.html"
	SiteBetaURL = "https://wp.nyu.edu/dining-beta/locations-and-menus.html"

	// MenuSuffix is appended to a feed id to form the expected trailing
	// path segment of that location's menu URL.
	MenuSuffix = ".json"

	// ScheduleUnknown marks a record whose schedules field was absent,
	// as opposed to a genuinely empty schedule list.
	ScheduleUnknown = -1

	nameSelector = ".dining-locations .location-name"
)

// Fetcher is satisfied by fetch.Client; tests inject canned responses.
type Fetcher interface {
	Get(url string) (*fetch.Response, error)
}

// Loader fetches and decodes all four payload kinds through one Fetcher.
type Loader struct {
	Client Fetcher

	// SiteVariant selects the tertiary endpoint: "" for the production
	// page, "beta" for the staging one (DINING_SITE env).
	SiteVariant string
}

// Location is a normalized locations.json record. Address and type fields
// are dropped during decode; nothing downstream reads them.
type Location struct {
	ID            string
	Name          string
	Open          bool
	OpenKnown     bool
	ScheduleCount int
}

// XMLLocation is a normalized locations.xml record. A record without an
// eventsFeedConfig block keeps HasFeed false and can never be matched.
type XMLLocation struct {
	Name    string
	MapName string
	ID      string
	MenuURL string
	HasFeed bool
}

// MenuKind is the outcome of fetching and validating one menu payload.
type MenuKind int

const (
	MenuValid MenuKind = iota
	MenuEmpty
	MenuMissing
	MenuFetchFailed
	MenuParseFailed
)

// MenuResult carries the outcome kind plus the menu count when known.
type MenuResult struct {
	Kind  MenuKind
	Count int
}

func (l *Loader) siteURL() string {
	if l.SiteVariant == "beta" {
		return SiteBetaURL
	}
	return SiteURL
}

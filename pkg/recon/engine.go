package recon

import (
	"path"
	"time"

	"github.com/nyuappdev/dining-audit/pkg/sources"
)

// Feed abstracts the source loaders so the engine can be driven by canned
// data in tests. sources.Loader satisfies it.
type Feed interface {
	Primary() ([]sources.Location, error)
	Secondary() ([]sources.XMLLocation, error)
	SiteNames() ([]string, string, error)
	Menu(url string) sources.MenuResult
}

// Engine runs one reconciliation pass. Everything is strictly sequential:
// the three loads, then each primary record's checks as one contiguous
// block, then the excess scans. Pacing inserts a delay between steps so the
// transcript stays readable; tests set it to zero.
type Engine struct {
	Feed   Feed
	Pacing time.Duration
}

// Run executes one full pass and returns its RunState. The returned state
// always has Completed set; Fatal is set when a source load failed, in
// which case no classification happened.
func (e *Engine) Run() *RunState {
	run := NewRunState()

	if !e.load(run) {
		run.Fatal = true
		run.Completed = true
		return run
	}

	e.normalizeSecondary(run)

	for _, loc := range run.Primary {
		e.checkLocation(run, loc)
	}

	e.scanExcess(run)

	run.Completed = true
	run.Infof("all checks completed: %d names classified", len(run.Names()))
	return run
}

func (e *Engine) pace() {
	if e.Pacing > 0 {
		time.Sleep(e.Pacing)
	}
}

// load fetches the three sources in order. The first failure aborts the
// run; there is no retry.
func (e *Engine) load(run *RunState) bool {
	primary, err := e.Feed.Primary()
	if err != nil {
		run.Errorf("locations.json load failed: %v", err)
		return false
	}
	run.Primary = primary
	run.Infof("locations.json loaded: %d locations", len(primary))
	e.pace()

	secondary, err := e.Feed.Secondary()
	if err != nil {
		run.Errorf("locations.xml load failed: %v", err)
		return false
	}
	run.Secondary = secondary
	run.Infof("locations.xml loaded: %d locations", len(secondary))
	e.pace()

	names, title, err := e.Feed.SiteNames()
	if err != nil {
		run.Errorf("dining page load failed: %v", err)
		return false
	}
	run.SiteNames = names
	if title != "" {
		run.Infof("dining page %q loaded: %d locations listed", title, len(names))
	} else {
		run.Infof("dining page loaded: %d locations listed", len(names))
	}
	e.pace()

	return true
}

// normalizeSecondary emits the per-record diagnostics for locations.xml:
// a missing eventsFeedConfig block leaves the record unmatchable, and a
// mapName that disagrees with name is suspicious but tolerated. A mapName
// identical to name is redundant and dropped.
func (e *Engine) normalizeSecondary(run *RunState) {
	for i := range run.Secondary {
		x := &run.Secondary[i]
		if !x.HasFeed {
			run.Errorf("%s: locations.xml record has no eventsFeedConfig", x.Name)
		}
		if x.MapName != "" {
			if x.MapName == x.Name {
				x.MapName = ""
			} else {
				run.Warnf("%s: mapName %q differs from name", x.Name, x.MapName)
			}
		}
	}
}

// checkLocation runs the full check block for one primary record. A panic
// while checking is contained to the record and classified OTHER_ERROR.
func (e *Engine) checkLocation(run *RunState, loc sources.Location) {
	defer func() {
		if p := recover(); p != nil {
			run.Errorf("%s: unexpected failure: %v", loc.Name, p)
			run.Record(loc.Name, StatusOtherError)
		}
	}()

	e.pace()
	e.validateOpen(run, loc)

	match, ok := e.matchSecondary(run, loc)
	if !ok {
		run.Errorf("%s: no matching record in locations.xml (id %q)", loc.Name, loc.ID)
		run.Record(loc.Name, StatusXMLError)
		e.checkSite(run, loc)
		return
	}

	menuOK := e.verifyMenu(run, loc, match)
	onSite := e.checkSite(run, loc)
	if menuOK && onSite {
		run.Record(loc.Name, StatusPassed)
	}
}

func (e *Engine) validateOpen(run *RunState, loc sources.Location) {
	switch {
	case !loc.OpenKnown:
		run.Errorf("%s: open field missing from locations.json", loc.Name)
	case loc.Open && loc.ScheduleCount == sources.ScheduleUnknown:
		run.Errorf("%s: open but schedules field is missing", loc.Name)
	case loc.Open && loc.ScheduleCount == 0:
		run.Errorf("%s: open but has zero schedules", loc.Name)
	case !loc.Open && loc.ScheduleCount == sources.ScheduleUnknown:
		run.Warnf("%s: closed, schedules field missing", loc.Name)
	case !loc.Open && loc.ScheduleCount == 0:
		run.Warnf("%s: closed with zero schedules", loc.Name)
	default:
		run.Infof("%s: open=%t, %d schedules", loc.Name, loc.Open, loc.ScheduleCount)
	}
}

// matchSecondary finds the primary record's locations.xml counterpart: same
// feed id and a name or mapName equal to the display name. The first record
// in document order wins; duplicate ids are resolved by that order alone.
func (e *Engine) matchSecondary(run *RunState, loc sources.Location) (sources.XMLLocation, bool) {
	if loc.ID == "" {
		return sources.XMLLocation{}, false
	}
	for i, x := range run.Secondary {
		if !x.HasFeed || x.ID != loc.ID {
			continue
		}
		if x.Name != loc.Name && x.MapName != loc.Name {
			continue
		}
		run.matchedSecondary[i] = true
		return x, true
	}
	return sources.XMLLocation{}, false
}

// verifyMenu checks the matched record's menu reference and payload. Any
// problem classifies MENU_ERROR; the trailing-segment comparison is only a
// warning and never blocks the fetch.
func (e *Engine) verifyMenu(run *RunState, loc sources.Location, match sources.XMLLocation) bool {
	if match.MenuURL == "" {
		run.Errorf("%s: eventsFeedConfig has no menu URL", loc.Name)
		run.Record(loc.Name, StatusMenuError)
		return false
	}

	want := match.ID + sources.MenuSuffix
	if base := path.Base(match.MenuURL); base != want {
		run.Warnf("%s: menu URL ends in %q, expected %q", loc.Name, base, want)
	} else {
		run.Infof("%s: menu URL matches feed id %s", loc.Name, match.ID)
	}

	e.pace()
	res := e.Feed.Menu(match.MenuURL)
	switch res.Kind {
	case sources.MenuValid:
		run.Infof("%s: menu loaded with %d menus", loc.Name, res.Count)
		return true
	case sources.MenuEmpty:
		run.Errorf("%s: menu payload has zero menus", loc.Name)
	case sources.MenuMissing:
		run.Errorf("%s: menu payload has no menus field", loc.Name)
	case sources.MenuFetchFailed:
		run.Errorf("%s: menu fetch failed (%s)", loc.Name, match.MenuURL)
	case sources.MenuParseFailed:
		run.Errorf("%s: menu payload is not a JSON object", loc.Name)
	}
	run.Record(loc.Name, StatusMenuError)
	return false
}

// checkSite reports whether the display name appears on the dining page.
// Absence is an error for a location that is open with schedules, a
// warning otherwise; either way it classifies SITE_ERROR.
func (e *Engine) checkSite(run *RunState, loc sources.Location) bool {
	e.pace()
	for _, name := range run.SiteNames {
		if name == loc.Name {
			run.Infof("%s: listed on the dining page", loc.Name)
			return true
		}
	}

	if loc.OpenKnown && loc.Open && loc.ScheduleCount > 0 {
		run.Errorf("%s: open with schedules but not listed on the dining page", loc.Name)
	} else {
		run.Warnf("%s: not listed on the dining page", loc.Name)
	}
	run.Record(loc.Name, StatusSiteError)
	return false
}

// scanExcess flags secondary and tertiary entries that no primary record
// ever touched.
func (e *Engine) scanExcess(run *RunState) {
	for i, x := range run.Secondary {
		if run.matchedSecondary[i] || run.Classified(x.Name) {
			continue
		}
		run.Errorf("%s: locations.xml record has no locations.json counterpart", x.Name)
		run.Record(x.Name, StatusXMLExcess)
	}
	for _, name := range run.SiteNames {
		if run.Classified(name) {
			continue
		}
		run.Errorf("%s: dining page entry has no locations.json counterpart", name)
		run.Record(name, StatusSiteExcess)
	}
}

package sources

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// Primary fetches locations.json and decodes it into Location records in
// document order. Any failure here is fatal for the run.
func (l *Loader) Primary() ([]Location, error) {
	res, err := l.Client.Get(PrimaryURL)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("locations.json: unexpected status %d", res.StatusCode)
	}
	if !gjson.Valid(res.Body) {
		return nil, errors.New("locations.json: invalid JSON")
	}

	parsed := gjson.Parse(res.Body)
	if !parsed.IsArray() {
		return nil, errors.New("locations.json: top-level value is not an array")
	}

	var locs []Location
	for _, item := range parsed.Array() {
		loc := Location{
			ID:            item.Get("id").String(),
			Name:          item.Get("name").String(),
			ScheduleCount: ScheduleUnknown,
		}
		if open := item.Get("open"); open.Exists() {
			loc.Open = open.Bool()
			loc.OpenKnown = true
		}
		if schedules := item.Get("schedules"); schedules.IsArray() {
			loc.ScheduleCount = len(schedules.Array())
		}
		locs = append(locs, loc)
	}

	if len(locs) == 0 {
		return nil, errors.New("locations.json: no location entries")
	}
	return locs, nil
}

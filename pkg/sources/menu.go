package sources

import (
	"net/http"

	"github.com/tidwall/gjson"
)

// Menu fetches one menu payload and reduces it to a MenuResult. Menu
// failures are never fatal; the caller records them against the location.
func (l *Loader) Menu(url string) MenuResult {
	res, err := l.Client.Get(url)
	if err != nil || res.StatusCode != http.StatusOK {
		return MenuResult{Kind: MenuFetchFailed, Count: ScheduleUnknown}
	}
	if !gjson.Valid(res.Body) {
		return MenuResult{Kind: MenuParseFailed, Count: ScheduleUnknown}
	}

	parsed := gjson.Parse(res.Body)
	if !parsed.IsObject() {
		return MenuResult{Kind: MenuParseFailed, Count: ScheduleUnknown}
	}

	menus := parsed.Get("menus")
	if !menus.IsArray() {
		return MenuResult{Kind: MenuMissing, Count: ScheduleUnknown}
	}

	n := len(menus.Array())
	if n == 0 {
		return MenuResult{Kind: MenuEmpty}
	}
	return MenuResult{Kind: MenuValid, Count: n}
}

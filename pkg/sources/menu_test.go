package sources

import (
	"net/http"
	"testing"

	"github.com/nyuappdev/dining-audit/pkg/fetch"
)

const menuURL = "https://s3.amazonaws.com/mobile.nyu.edu/dining/menus/410.json"

func menuLoader(res *fetch.Response) *Loader {
	return &Loader{Client: &fakeFetcher{responses: map[string]*fetch.Response{menuURL: res}}}
}

func TestMenuValid(t *testing.T) {
	got := menuLoader(okBody(`{"menus": [{"name": "Breakfast"}, {"name": "Lunch"}]}`)).Menu(menuURL)
	if got.Kind != MenuValid || got.Count != 2 {
		t.Fatalf("expected valid menu with 2 entries, got %+v", got)
	}
}

func TestMenuEmptyList(t *testing.T) {
	got := menuLoader(okBody(`{"menus": []}`)).Menu(menuURL)
	if got.Kind != MenuEmpty {
		t.Fatalf("expected MenuEmpty, got %+v", got)
	}
}

func TestMenuMissingField(t *testing.T) {
	got := menuLoader(okBody(`{"location": "Kimmel"}`)).Menu(menuURL)
	if got.Kind != MenuMissing || got.Count != ScheduleUnknown {
		t.Fatalf("expected MenuMissing with sentinel count, got %+v", got)
	}
}

func TestMenuServerError(t *testing.T) {
	got := menuLoader(&fetch.Response{StatusCode: http.StatusInternalServerError}).Menu(menuURL)
	if got.Kind != MenuFetchFailed {
		t.Fatalf("expected MenuFetchFailed, got %+v", got)
	}
}

func TestMenuNotAnObject(t *testing.T) {
	got := menuLoader(okBody(`["not", "an", "object"]`)).Menu(menuURL)
	if got.Kind != MenuParseFailed {
		t.Fatalf("expected MenuParseFailed, got %+v", got)
	}
}

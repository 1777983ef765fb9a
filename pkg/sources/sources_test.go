package sources

import (
	"errors"
	"net/http"

	"github.com/nyuappdev/dining-audit/pkg/fetch"
)

// fakeFetcher serves canned responses per URL.
type fakeFetcher struct {
	responses map[string]*fetch.Response
	errs      map[string]error
}

func (f *fakeFetcher) Get(url string) (*fetch.Response, error) {
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	if res, ok := f.responses[url]; ok {
		return res, nil
	}
	return nil, errors.New("no canned response for " + url)
}

func okBody(body string) *fetch.Response {
	return &fetch.Response{StatusCode: http.StatusOK, Body: body}
}

func newLoader(url, body string) *Loader {
	return &Loader{Client: &fakeFetcher{
		responses: map[string]*fetch.Response{url: okBody(body)},
	}}
}

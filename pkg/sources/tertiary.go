package sources

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SiteNames fetches the rendered dining page and extracts the listed
// location names. The page title is returned for logging. An empty result
// means the selector found nothing and is fatal for the run.
func (l *Loader) SiteNames() ([]string, string, error) {
	res, err := l.Client.Get(l.siteURL())
	if err != nil {
		return nil, "", err
	}
	if res.StatusCode != http.StatusOK {
		return nil, res.Title, fmt.Errorf("dining page: unexpected status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.Body))
	if err != nil {
		return nil, res.Title, fmt.Errorf("dining page: %w", err)
	}

	var names []string
	doc.Find(nameSelector).Each(func(_ int, s *goquery.Selection) {
		if name := strings.TrimSpace(s.Text()); name != "" {
			names = append(names, name)
		}
	})

	if len(names) == 0 {
		return nil, res.Title, errors.New("dining page: no location names found")
	}
	return names, res.Title, nil
}

package sources

import "testing"

const samplePage = `<!DOCTYPE html>
<html><head><title>Dining at NYU</title></head>
<body>
<div class="dining-locations">
  <div class="location"><span class="location-name">Kimmel MarketPlace</span></div>
  <div class="location"><span class="location-name">Bobst Caf&eacute;</span></div>
  <div class="location"><span class="location-name">  Upstein &amp; Downstein </span></div>
  <div class="location"><span class="location-name"></span></div>
</div>
</body></html>`

func TestSiteNamesExtractsAndDecodes(t *testing.T) {
	names, _, err := newLoader(SiteURL, samplePage).SiteNames()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 3 {
		t.Fatalf("expected 3 names, got %d: %v", len(names), names)
	}
	if names[1] != "Bobst Café" {
		t.Fatalf("expected entity-decoded name, got %q", names[1])
	}
	if names[2] != "Upstein & Downstein" {
		t.Fatalf("expected trimmed, decoded name, got %q", names[2])
	}
}

func TestSiteNamesEmptySelectorIsError(t *testing.T) {
	if _, _, err := newLoader(SiteURL, `<html><body><p>nothing here</p></body></html>`).SiteNames(); err == nil {
		t.Fatal("expected an error when the selector matches nothing")
	}
}

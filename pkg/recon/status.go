package recon

// Status is the closed set of terminal classifications a location name can
// accumulate over one run.
type Status int

const (
	StatusPassed Status = iota
	StatusXMLError
	StatusMenuError
	StatusSiteError
	StatusXMLExcess
	StatusSiteExcess
	StatusOtherError
)

var statusNames = map[Status]string{
	StatusPassed:     "PASSED",
	StatusXMLError:   "XML_ERROR",
	StatusMenuError:  "MENU_ERROR",
	StatusSiteError:  "SITE_ERROR",
	StatusXMLExcess:  "XML_EXCESS",
	StatusSiteExcess: "SITE_EXCESS",
	StatusOtherError: "OTHER_ERROR",
}

var statusDescriptions = map[Status]string{
	StatusPassed:     "matched in locations.xml, menu loads with at least one menu, listed on the dining page",
	StatusXMLError:   "no matching locations.xml record",
	StatusMenuError:  "matched in locations.xml but the menu is missing, empty, or failed to load",
	StatusSiteError:  "not listed on the dining page",
	StatusXMLExcess:  "locations.xml record with no locations.json counterpart",
	StatusSiteExcess: "dining page entry with no locations.json counterpart",
	StatusOtherError: "unexpected failure while checking the location",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Description returns the glossary line for a status.
func (s Status) Description() string {
	return statusDescriptions[s]
}

// AllStatuses returns every status in report order.
func AllStatuses() []Status {
	return []Status{
		StatusPassed,
		StatusXMLError,
		StatusMenuError,
		StatusSiteError,
		StatusXMLExcess,
		StatusSiteExcess,
		StatusOtherError,
	}
}

package locations

import (
	"time"

	"github.com/codeGROOVE-dev/vibetime/pkg/tzconvert"
)

// DefaultCities seed a fresh install after the local zone.
var DefaultCities = []Location{
	{Name: "New York", Timezone: "America/New_York", CountryCode: "US"},
	{Name: "London", Timezone: "Europe/London", CountryCode: "GB"},
	{Name: "Tokyo", Timezone: "Asia/Tokyo", CountryCode: "JP"},
}

// LocalName is used when the host zone has no city component.
const LocalName = "Your Location"

// LocalZone returns the IANA name of the host's zone, or "UTC" when it cannot be
// determined (time.Local reports "Local" without TZ set).
func LocalZone() string {
	name := time.Local.String()
	if name == "" || name == "Local" || !tzconvert.IsValidZone(name) {
		return "UTC"
	}
	return name
}

// Bootstrap builds the first-run list: the local zone followed by the defaults.
// Defaults that share the local zone are skipped.
func Bootstrap(localZone string, defaults []Location) *Set {
	if !tzconvert.IsValidZone(localZone) {
		localZone = "UTC"
	}
	name := tzconvert.CityFromZone(localZone)
	if name == "" || name == "UTC" || name == "Local" {
		name = LocalName
	}

	s := NewSet(nil)
	if _, err := s.Add(Location{Name: name, Timezone: localZone}); err != nil {
		return s
	}
	for _, d := range defaults {
		_, _ = s.Add(d) //nolint:errcheck // duplicates of the local zone are expected
	}
	return s
}

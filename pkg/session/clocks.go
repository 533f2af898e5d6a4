package session

import (
	"fmt"
	"time"

	"github.com/codeGROOVE-dev/vibetime/pkg/locations"
	"github.com/codeGROOVE-dev/vibetime/pkg/tzconvert"
)

// Clock is one location projected at an instant, ready for display.
type Clock struct {
	Location locations.Location  `json:"location"`
	Wall     tzconvert.WallClock `json:"wall"`
	Time     string              `json:"time"`
	Date     string              `json:"date"`
	Offset   string              `json:"utc_offset"`
	Relative string              `json:"relative"`
	Night    bool                `json:"night"`
	IsBase   bool                `json:"is_base"`
}

// Clocks projects every listed location at the selected instant.
func (s *Session) Clocks() []Clock {
	return ClocksAt(s.Locations(), s.Selected())
}

// ClocksAt projects locs at instant. Relative labels are measured against locs[0].
// Entries whose zone no longer loads are skipped.
func ClocksAt(locs []locations.Location, instant time.Time) []Clock {
	out := make([]Clock, 0, len(locs))
	baseOffset := 0
	for i, loc := range locs {
		w, err := tzconvert.Project(instant, loc.Timezone)
		if err != nil {
			continue
		}
		if i == 0 {
			baseOffset = w.OffsetSeconds
		}
		out = append(out, Clock{
			Location: loc,
			Wall:     w,
			Time:     w.Time12(),
			Date:     w.DateShort(),
			Offset:   w.OffsetLabel(),
			Relative: RelativeLabel(w.OffsetSeconds - baseOffset),
			Night:    w.IsNight(),
			IsBase:   i == 0,
		})
	}
	return out
}

// RelativeLabel formats a difference in UTC offsets: "+9h", "-3h 30m", "same time".
func RelativeLabel(diffSeconds int) string {
	if diffSeconds == 0 {
		return "same time"
	}
	sign := "+"
	if diffSeconds < 0 {
		sign = "-"
		diffSeconds = -diffSeconds
	}
	h, m := diffSeconds/3600, diffSeconds%3600/60
	if m == 0 {
		return fmt.Sprintf("%s%dh", sign, h)
	}
	return fmt.Sprintf("%s%dh %dm", sign, h, m)
}

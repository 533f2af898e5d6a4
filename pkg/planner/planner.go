// Package planner builds the meeting-planner heatmap: one row per location,
// 24 hourly columns anchored at midnight of the chosen day in the base zone.
package planner

import (
	"fmt"
	"time"

	"github.com/codeGROOVE-dev/vibetime/pkg/locations"
	"github.com/codeGROOVE-dev/vibetime/pkg/tzconvert"
)

// Slots is the number of hourly columns.
const Slots = 24

// StripRadius is how many days either side of the selected day the date strip shows.
const StripRadius = 3

// Class buckets a local hour for colouring.
type Class string

const (
	Night   Class = "night"
	Sunrise Class = "sunrise"
	Work    Class = "work"
	Evening Class = "evening"
)

// ClassifyHour maps a local hour to its slot class.
func ClassifyHour(hour int) Class {
	switch {
	case hour >= 22 || hour < 6:
		return Night
	case hour < 9:
		return Sunrise
	case hour < 18:
		return Work
	default:
		return Evening
	}
}

// Cell is one hour slot in one location.
type Cell struct {
	Instant time.Time `json:"instant"`
	Class   Class     `json:"class"`
	Hour    int       `json:"hour"`
	Minute  int       `json:"minute"`
	NewDay  bool      `json:"new_day"`
}

// Label is the hour, with ":MM" only for zones off the hour.
func (c Cell) Label() string {
	if c.Minute != 0 {
		return fmt.Sprintf("%d:%02d", c.Hour, c.Minute)
	}
	return fmt.Sprintf("%d", c.Hour)
}

// Row is one location's line in the grid.
type Row struct {
	Location    locations.Location  `json:"location"`
	Now         tzconvert.WallClock `json:"now"`
	OffsetLabel string              `json:"offset_label"`
	Cells       []Cell              `json:"cells"`
	IsBase      bool                `json:"is_base"`
}

// Day is one entry in the date strip.
type Day struct {
	Date     time.Time `json:"date"`
	Selected bool      `json:"selected"`
	Today    bool      `json:"today"`
}

// Grid is the full planner view.
type Grid struct {
	Day       time.Time `json:"day"`
	BaseZone  string    `json:"base_zone"`
	Rows      []Row     `json:"rows"`
	Strip     []Day     `json:"strip"`
	NowColumn int       `json:"now_column"`
}

// Build lays out the grid for locs on the calendar day containing selected in the
// base zone (locs[0]). With no locations the base zone is UTC.
func Build(locs []locations.Location, selected, now time.Time) (*Grid, error) {
	baseZone := "UTC"
	if len(locs) > 0 {
		baseZone = locs[0].Timezone
	}
	baseLoc, err := tzconvert.LoadZone(baseZone)
	if err != nil {
		return nil, err
	}

	sel := selected.In(baseLoc)
	dayStart := time.Date(sel.Year(), sel.Month(), sel.Day(), 0, 0, 0, 0, baseLoc)

	g := &Grid{
		Day:       dayStart,
		BaseZone:  baseZone,
		NowColumn: now.In(baseLoc).Hour(),
		Strip:     strip(dayStart, now.In(baseLoc), baseLoc),
	}

	for i, l := range locs {
		zone, err := tzconvert.LoadZone(l.Timezone)
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", i, l.Name, err)
		}
		current := tzconvert.ProjectIn(now, zone)
		row := Row{
			Location:    l,
			Now:         current,
			OffsetLabel: current.OffsetHoursLabel(),
			IsBase:      i == 0,
			Cells:       make([]Cell, Slots),
		}
		for h := range Slots {
			moment := dayStart.Add(time.Duration(h) * time.Hour)
			w := tzconvert.ProjectIn(moment, zone)
			row.Cells[h] = Cell{
				Instant: moment,
				Hour:    w.Hour,
				Minute:  w.Minute,
				Class:   ClassifyHour(w.Hour),
				NewDay:  w.Hour == 0 && w.Minute == 0,
			}
		}
		g.Rows = append(g.Rows, row)
	}
	return g, nil
}

func strip(dayStart, today time.Time, loc *time.Location) []Day {
	days := make([]Day, 0, 2*StripRadius+1)
	for i := -StripRadius; i <= StripRadius; i++ {
		d := time.Date(dayStart.Year(), dayStart.Month(), dayStart.Day()+i, 0, 0, 0, 0, loc)
		days = append(days, Day{
			Date:     d,
			Selected: i == 0,
			Today:    sameDay(d, today),
		})
	}
	return days
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/codeGROOVE-dev/vibetime/pkg/locations"
	"github.com/codeGROOVE-dev/vibetime/pkg/tzconvert"
)

// Dial geometry: terminal cells are about twice as tall as wide, so the
// horizontal radius is double the vertical one.
const (
	dialRows = 11
	dialCols = 23
	radiusY  = 5.0
	radiusX  = 10.0
)

// Dial draws an analog clock face for the hand angles. The minute hand is
// drawn with '*', the hour hand with '#'; where they overlap the hour hand wins.
func Dial(h tzconvert.Hands) []string {
	grid := make([][]rune, dialRows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", dialCols))
	}
	cx, cy := dialCols/2, dialRows/2

	plot := func(deg, reach float64) (int, int) {
		rad := deg * math.Pi / 180
		x := cx + int(math.Round(math.Sin(rad)*radiusX*reach))
		y := cy - int(math.Round(math.Cos(rad)*radiusY*reach))
		return x, y
	}
	hand := func(deg, length float64, mark rune) {
		for step := 1; step <= 8; step++ {
			x, y := plot(deg, length*float64(step)/8)
			if y >= 0 && y < dialRows && x >= 0 && x < dialCols {
				grid[y][x] = mark
			}
		}
	}

	for n := 1; n <= 12; n++ {
		x, y := plot(float64(n)*30, 1)
		label := []rune(fmt.Sprint(n))
		if len(label) == 2 {
			x--
		}
		copy(grid[y][x:], label)
	}
	hand(h.Minute, 0.8, '*')
	hand(h.Hour, 0.5, '#')
	grid[cy][cx] = 'o'

	lines := make([]string, dialRows)
	for i, row := range grid {
		lines[i] = strings.TrimRight(string(row), " ")
	}
	return lines
}

// Widget renders the preview widget: the analog dial beside a digital readout.
func Widget(p Palette, loc locations.Location, w tzconvert.WallClock) string {
	dial := Dial(w.Hands())
	side := map[int]string{
		3: p.Accent.Sprint(loc.Name),
		4: p.Muted.Sprint(loc.Timezone),
		5: p.Accent.Sprint(w.Time24Seconds()),
		6: w.DateLong(),
		7: p.Muted.Sprintf("%s (%s)", w.OffsetLabel(), w.Abbrev),
	}
	var out strings.Builder
	header(&out, "🕰  Widget")
	for i, line := range dial {
		if s, ok := side[i]; ok {
			fmt.Fprintf(&out, "%-*s   %s\n", dialCols, line, s)
			continue
		}
		out.WriteString(line + "\n")
	}
	return out.String()
}

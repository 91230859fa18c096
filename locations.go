package icesheets

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/maseology/mmio"
)

// Location is one point of the localization list.
type Location struct {
	Name     string
	ID       int
	Lat, Lon float64
}

// LoadLocations parses a location list: one site per line as
// "name id latitude longitude", whitespace separated. Blank lines and
// #-comments are skipped; ids must be unique and order is preserved.
func LoadLocations(path string) ([]Location, error) {
	lns, err := mmio.ReadTextLines(path)
	if err != nil {
		return nil, fmt.Errorf("locations %s: %w", path, err)
	}
	var out []Location
	seen := map[int]int{} // id -> line number
	for i, ln := range lns {
		ln = strings.TrimSpace(ln)
		if ln == "" || strings.HasPrefix(ln, "#") {
			continue
		}
		fd := strings.Fields(ln)
		if len(fd) < 4 {
			return nil, fmt.Errorf("locations %s line %d: %w: need name id lat lon",
				path, i+1, ErrInputFormat)
		}
		id, err := strconv.Atoi(fd[len(fd)-3])
		if err != nil {
			return nil, fmt.Errorf("locations %s line %d: %w: bad id %q", path, i+1, ErrInputFormat, fd[len(fd)-3])
		}
		lat, err := strconv.ParseFloat(fd[len(fd)-2], 64)
		if err != nil {
			return nil, fmt.Errorf("locations %s line %d: %w: bad latitude %q", path, i+1, ErrInputFormat, fd[len(fd)-2])
		}
		lon, err := strconv.ParseFloat(fd[len(fd)-1], 64)
		if err != nil {
			return nil, fmt.Errorf("locations %s line %d: %w: bad longitude %q", path, i+1, ErrInputFormat, fd[len(fd)-1])
		}
		if prev, dup := seen[id]; dup {
			return nil, fmt.Errorf("locations %s line %d: %w: id %d repeats line %d",
				path, i+1, ErrInputFormat, id, prev)
		}
		seen[id] = i + 1
		out = append(out, Location{
			Name: strings.Join(fd[:len(fd)-3], " "),
			ID:   id,
			Lat:  lat,
			Lon:  lon,
		})
	}
	return out, nil
}

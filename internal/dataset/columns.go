package dataset

import "strconv"

// Derived columns appended to every row of every table.
const (
	ColumnEvent     = "Event"
	ColumnLatitude  = "Latitude"
	ColumnLongitude = "Longitude"
)

// UniqueColumnNames disambiguates duplicate column names. For a name that
// appears more than once, the first occurrence keeps the bare name and the
// j-th occurrence (0-indexed) is suffixed with j: ["a","b","a","a"] becomes
// ["a","b","a1","a2"]. Names appearing once are left untouched. The output
// always has the same length and order as the input.
func UniqueColumnNames(names []string) []string {
	seen := make(map[string]int, len(names))
	out := make([]string, len(names))
	for i, name := range names {
		if n := seen[name]; n > 0 {
			out[i] = name + strconv.Itoa(n)
		} else {
			out[i] = name
		}
		seen[name]++
	}
	return out
}

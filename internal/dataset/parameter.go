package dataset

import "encoding/json"

// ageUnits maps known age-unit synonyms to the canonical "ka BP".
// NOAA files spell thousand-years-before-present many different ways.
var ageUnits = map[string]string{
	"calendar kiloyear before present":  "ka BP",
	"calendar kiloyears before present": "ka BP",
	"cal kyr BP":                        "ka BP",
	"calendar kyears before present":    "ka BP",
	"Age_kyr":                           "ka BP",
	"cal ka BP":                         "ka BP",
	"calendar ka before 1950AD":         "ka BP",
	"calendar kiloyears before 1950 AD": "ka BP",
	"calendar kiloyears before 1950":    "ka BP",
	"calendar Kyears before present":    "ka BP",
	"kyr BP":                            "ka BP",
	"kyrs":                              "ka BP",
	"calendar ka before present":        "ka BP",
	"cal kiloyears before present":      "ka BP",
}

// CanonicalUnit normalizes known age-unit synonyms to "ka BP".
// Unrecognized units pass through unchanged.
func CanonicalUnit(unit string) string {
	if canonical, ok := ageUnits[unit]; ok {
		return canonical
	}
	return unit
}

// Parameter describes one measured variable: a column name unique within
// its table, a display name, and a unit.
type Parameter struct {
	Name     string `json:"name"`
	LongName string `json:"long_name"`
	Unit     string `json:"unit"`
}

// NewParameter builds a Parameter, normalizing the unit through the
// age-unit lookup.
func NewParameter(name, longName, unit string) Parameter {
	return Parameter{
		Name:     name,
		LongName: longName,
		Unit:     CanonicalUnit(unit),
	}
}

// ParamSet is an insertion-ordered mapping of column name to Parameter.
// Setting an existing name overwrites the entry without changing its
// position.
type ParamSet struct {
	order  []string
	byName map[string]Parameter
}

// NewParamSet creates an empty ParamSet.
func NewParamSet() *ParamSet {
	return &ParamSet{byName: make(map[string]Parameter)}
}

// Set inserts or overwrites the parameter keyed by its name.
func (s *ParamSet) Set(p Parameter) {
	if _, ok := s.byName[p.Name]; !ok {
		s.order = append(s.order, p.Name)
	}
	s.byName[p.Name] = p
}

// Get returns the parameter for a column name.
func (s *ParamSet) Get(name string) (Parameter, bool) {
	p, ok := s.byName[name]
	return p, ok
}

// Names returns the column names in insertion order.
func (s *ParamSet) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of parameters.
func (s *ParamSet) Len() int {
	return len(s.order)
}

// Merge copies every parameter from other into s, in other's order.
// Same-named entries are overwritten (last write wins).
func (s *ParamSet) Merge(other *ParamSet) {
	if other == nil {
		return
	}
	for _, name := range other.order {
		s.Set(other.byName[name])
	}
}

// MarshalJSON encodes the set as an ordered array of parameters.
func (s *ParamSet) MarshalJSON() ([]byte, error) {
	params := make([]Parameter, 0, len(s.order))
	for _, name := range s.order {
		params = append(params, s.byName[name])
	}
	return json.Marshal(params)
}

// UnmarshalJSON rebuilds the set from an ordered array of parameters.
func (s *ParamSet) UnmarshalJSON(b []byte) error {
	var params []Parameter
	if err := json.Unmarshal(b, &params); err != nil {
		return err
	}
	s.order = nil
	s.byName = make(map[string]Parameter, len(params))
	for _, p := range params {
		s.Set(p)
	}
	return nil
}

package noaa

import (
	"fmt"
	"strings"
)

// Study is the metadata document for one NOAA Paleoclimatology study, as
// returned by the study search endpoint. Only the fields the ingestion
// pipeline reads are mapped; everything else in the document is ignored.
type Study struct {
	NOAAStudyID        string `json:"NOAAStudyId"`
	StudyName          string `json:"studyName"`
	DOI                string `json:"doi"`
	OnlineResourceLink string `json:"onlineResourceLink"`
	Site               []Site `json:"site"`
}

// Site is one measurement site within a study.
type Site struct {
	SiteName  string      `json:"siteName"`
	Geo       Geo         `json:"geo"`
	PaleoData []PaleoData `json:"paleoData"`
}

// Geo wraps the GeoJSON-style location of a site.
type Geo struct {
	Geometry Geometry `json:"geometry"`
}

// Geometry holds the site coordinates. The document stores them in
// [longitude, latitude] order.
type Geometry struct {
	Coordinates []float64 `json:"coordinates"`
}

// PaleoData is one group of data files within a site.
type PaleoData struct {
	DataFile []DataFile `json:"dataFile"`
}

// DataFile points to one downloadable measurement file.
type DataFile struct {
	FileURL string `json:"fileUrl"`
}

// searchResponse is the top-level shape of the search endpoint response.
type searchResponse struct {
	Study []Study `json:"study"`
}

// Validate checks that the document carries the fields the assembler
// depends on. A document failing validation aborts the whole build.
func (s *Study) Validate() error {
	var missing []string
	if s.OnlineResourceLink == "" {
		missing = append(missing, "onlineResourceLink")
	}
	if s.DOI == "" {
		missing = append(missing, "doi")
	}
	if s.StudyName == "" {
		missing = append(missing, "studyName")
	}
	if len(s.Site) == 0 {
		missing = append(missing, "site")
	}
	if len(missing) > 0 {
		return fmt.Errorf("study metadata missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Longitude returns the first coordinate of the site, per document order.
func (s *Site) Longitude() float64 {
	if len(s.Geo.Geometry.Coordinates) > 0 {
		return s.Geo.Geometry.Coordinates[0]
	}
	return 0
}

// Latitude returns the second coordinate of the site, per document order.
func (s *Site) Latitude() float64 {
	if len(s.Geo.Geometry.Coordinates) > 1 {
		return s.Geo.Geometry.Coordinates[1]
	}
	return 0
}

// HasCoordinates reports whether the site carries a usable [lon, lat] pair.
func (s *Site) HasCoordinates() bool {
	return len(s.Geo.Geometry.Coordinates) >= 2
}

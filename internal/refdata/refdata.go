// Package refdata holds the embedded, read-only reference dataset: per-area
// demographics and centroids from the 2020 census, and the postal-prefix tables.
package refdata

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/bizmapper/internal/model"
)

//go:embed areas.yaml
var areasYAML []byte

//go:embed postal.yaml
var postalYAML []byte

// Area is one planning area from the reference table.
type Area struct {
	Name     string     `yaml:"name"`
	Centroid [2]float64 `yaml:"centroid"` // lat, lng

	model.DemographicRecord `yaml:",inline"`
}

// Point returns the area centroid as a GeoPoint.
func (a Area) Point() model.GeoPoint {
	return model.GeoPoint{Lat: a.Centroid[0], Lng: a.Centroid[1]}
}

// Dataset is the parsed reference data. Areas keep file order, which is the
// tie-break order for nearest-centroid and fuzzy matching.
type Dataset struct {
	Areas   []Area
	Prefix3 map[string]string
	Prefix2 map[string]string
}

type areasFile struct {
	Areas []Area `yaml:"areas"`
}

type postalFile struct {
	Prefix3 map[string]string `yaml:"prefix3"`
	Prefix2 map[string]string `yaml:"prefix2"`
}

// Parse decodes reference data from raw YAML documents.
func Parse(areas, postal []byte) (*Dataset, error) {
	var af areasFile
	if err := yaml.Unmarshal(areas, &af); err != nil {
		return nil, eris.Wrap(err, "refdata: parse areas")
	}
	if len(af.Areas) == 0 {
		return nil, eris.New("refdata: no planning areas defined")
	}

	seen := make(map[string]bool, len(af.Areas))
	for i := range af.Areas {
		name := strings.ToUpper(strings.TrimSpace(af.Areas[i].Name))
		if name == "" {
			return nil, eris.Errorf("refdata: area %d has no name", i)
		}
		if seen[name] {
			return nil, eris.Errorf("refdata: duplicate area %s", name)
		}
		seen[name] = true
		af.Areas[i].Name = name
	}

	var pf postalFile
	if err := yaml.Unmarshal(postal, &pf); err != nil {
		return nil, eris.Wrap(err, "refdata: parse postal prefixes")
	}
	for prefix, area := range pf.Prefix3 {
		if len(prefix) != 3 {
			return nil, eris.Errorf("refdata: prefix3 key %q is not 3 digits", prefix)
		}
		pf.Prefix3[prefix] = strings.ToUpper(area)
	}
	for prefix, area := range pf.Prefix2 {
		if len(prefix) != 2 {
			return nil, eris.Errorf("refdata: prefix2 key %q is not 2 digits", prefix)
		}
		pf.Prefix2[prefix] = strings.ToUpper(area)
	}

	return &Dataset{
		Areas:   af.Areas,
		Prefix3: pf.Prefix3,
		Prefix2: pf.Prefix2,
	}, nil
}

var (
	loadOnce sync.Once
	loaded   *Dataset
	loadErr  error
)

// Load returns the embedded dataset, parsing it on first use.
func Load() (*Dataset, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Parse(areasYAML, postalYAML)
	})
	return loaded, loadErr
}

// MustLoad is Load for program start-up, where the embedded data is known good.
func MustLoad() *Dataset {
	ds, err := Load()
	if err != nil {
		panic(err)
	}
	return ds
}

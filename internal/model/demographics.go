package model

// Dwellings holds percentage shares of resident households by dwelling type.
type Dwellings struct {
	HDB    int `json:"hdb" yaml:"hdb"`
	Condo  int `json:"condo" yaml:"condo"`
	Landed int `json:"landed" yaml:"landed"`
	Other  int `json:"other" yaml:"other"`
}

// Total returns the sum of all shares. It should be close to 100.
func (d Dwellings) Total() int {
	return d.HDB + d.Condo + d.Landed + d.Other
}

// AgeGroups holds percentage shares of residents per age band.
type AgeGroups struct {
	Young   int `json:"young" yaml:"young"`     // 0-24
	Working int `json:"working" yaml:"working"` // 25-64
	Senior  int `json:"senior" yaml:"senior"`   // 65+
}

// Total returns the sum of all shares. It should be close to 100.
func (a AgeGroups) Total() int {
	return a.Young + a.Working + a.Senior
}

// Dominant returns the name of the largest age band. Ties go to the younger band.
func (a AgeGroups) Dominant() string {
	name, best := "young", a.Young
	if a.Working > best {
		name, best = "working", a.Working
	}
	if a.Senior > best {
		name = "senior"
	}
	return name
}

// DemographicRecord is the per-planning-area statistics shown to the user.
type DemographicRecord struct {
	Population            int       `json:"population" yaml:"population"`
	MedianAge             int       `json:"median_age" yaml:"median_age"`
	MedianHouseholdIncome int       `json:"median_household_income" yaml:"median_household_income"`
	Density               int       `json:"density" yaml:"density"`
	Dwellings             Dwellings `json:"dwellings" yaml:"dwellings"`
	AgeGroups             AgeGroups `json:"age_groups" yaml:"age_groups"`
}

// LandAreaKm2 derives the land area from population and density.
// Returns false when density is zero.
func (r DemographicRecord) LandAreaKm2() (float64, bool) {
	if r.Density <= 0 {
		return 0, false
	}
	return float64(r.Population) / float64(r.Density), true
}

// Neutral defaults used when neither the live nor the reference table has a value.
const (
	DefaultMedianAge             = 40
	DefaultMedianHouseholdIncome = 8000
)

var (
	DefaultDwellings = Dwellings{HDB: 50, Condo: 30, Landed: 10, Other: 10}
	DefaultAgeGroups = AgeGroups{Young: 25, Working: 60, Senior: 15}
)

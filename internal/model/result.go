package model

// Insight is a short business-siting tip derived from a DemographicRecord.
type Insight struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// DensityTier is a coarse label for population density.
type DensityTier struct {
	Label  string `json:"label"`
	Colour string `json:"colour"`
}

// ResolutionResult is the outcome of one pin-drop or search interaction.
// It is transient and never persisted. Identical inputs against unchanged
// upstream state produce identical results.
type ResolutionResult struct {
	Point        GeoPoint           `json:"point"`
	Area         string             `json:"area"`
	DisplayName  string             `json:"display_name"`
	Address      string             `json:"address,omitempty"`
	Provenance   Provenance         `json:"provenance"`
	Tier         Tier               `json:"tier"`
	Demographics *DemographicRecord `json:"demographics"`
	DataSource   DataSource         `json:"data_source"`
	SourceLabel  string             `json:"source_label"`
	DensityTier  DensityTier        `json:"density_tier"`
	Insights     []Insight          `json:"insights"`
	Query        string             `json:"query,omitempty"`
}

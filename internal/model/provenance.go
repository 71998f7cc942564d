package model

// Provenance tags where an area resolution came from.
type Provenance string

const (
	// ProvenanceRemote means the live geocoder was reachable for this interaction,
	// even if the final area name came from the centroid fallback.
	ProvenanceRemote Provenance = "remote"
	// ProvenanceOffline means the geocoder could not be reached and the area is a
	// nearest-centroid estimate.
	ProvenanceOffline Provenance = "offline-estimate"
)

// Tier records which fallback stage produced the area name.
type Tier string

const (
	TierGeocodeNarrow Tier = "geocode-narrow"
	TierGeocodeWide   Tier = "geocode-wide"
	TierCentroid      Tier = "centroid"
)

// DataSource tags which demographics table a record was read from.
type DataSource string

const (
	DataSourceLive      DataSource = "live"
	DataSourceReference DataSource = "reference"
)

// ReferenceSourceLabel is shown when no live table has been loaded.
const ReferenceSourceLabel = "Census 2020 (embedded)"

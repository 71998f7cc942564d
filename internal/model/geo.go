package model

import "fmt"

// GeoPoint is a WGS-84 coordinate in degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("%.5f,%.5f", p.Lat, p.Lng)
}

// Valid reports whether the point lies within WGS-84 bounds.
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Singapore bounding box, used only for informational flags.
const (
	SingaporeMinLat = 1.15
	SingaporeMaxLat = 1.48
	SingaporeMinLng = 103.59
	SingaporeMaxLng = 104.10
)

// InSingapore reports whether the point falls inside the Singapore bounding box.
func (p GeoPoint) InSingapore() bool {
	return p.Lat >= SingaporeMinLat && p.Lat <= SingaporeMaxLat &&
		p.Lng >= SingaporeMinLng && p.Lng <= SingaporeMaxLng
}

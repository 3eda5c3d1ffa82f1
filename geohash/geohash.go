// Package geohash derives a geohash for each artist with known coordinates,
// so that artists can be grouped by area without range queries on latitude
// and longitude.
package geohash

import (
	"github.com/mmcloughlin/geohash"
	"github.com/pilosa/starschema"
)

// DefaultPrecision is the geohash length used when Precision is 0. Six
// characters is a cell of roughly 1.2km by 0.6km.
const DefaultPrecision = 6

// Transformer is a starschema.ArtistTransformer which sets Artist.Geohash from
// the artist's latitude and longitude. Artists without both coordinates, or
// with coordinates off the globe, are left alone.
type Transformer struct {
	Precision uint
}

// TransformArtist implements starschema.ArtistTransformer.
func (t *Transformer) TransformArtist(a *starschema.Artist) error {
	if a.Latitude == nil || a.Longitude == nil {
		return nil
	}
	lat, lon := *a.Latitude, *a.Longitude
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil
	}
	precision := t.Precision
	if precision == 0 {
		precision = DefaultPrecision
	}
	a.Geohash = geohash.EncodeWithPrecision(lat, lon, precision)
	return nil
}

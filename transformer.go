package starschema

// ArtistTransformer enriches rows of the artists dimension after they are
// extracted and before they are written.
type ArtistTransformer interface {
	TransformArtist(a *Artist) error
}

// ArtistTransformerFunc can be wrapped around a function to make it implement
// the ArtistTransformer interface. Similar to http.HandlerFunc.
type ArtistTransformerFunc func(*Artist) error

// TransformArtist implements ArtistTransformer for ArtistTransformerFunc
func (t ArtistTransformerFunc) TransformArtist(a *Artist) error {
	return t(a)
}

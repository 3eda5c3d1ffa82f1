package starschema

// ExtractSongs projects the song catalog into the songs dimension. Records
// without a song_id are dropped. When a song_id appears more than once, the
// first record in input order wins.
func ExtractSongs(recs []SongRecord) ([]Song, TableStats) {
	stats := TableStats{Table: TableSongs, Input: len(recs)}
	seen := make(map[string]struct{}, len(recs))
	songs := make([]Song, 0, len(recs))
	for _, rec := range recs {
		if rec.SongID == "" {
			stats.NullKey++
			continue
		}
		if _, ok := seen[rec.SongID]; ok {
			stats.Duplicates++
			continue
		}
		seen[rec.SongID] = struct{}{}
		songs = append(songs, Song{
			SongID:   rec.SongID,
			Title:    rec.Title,
			ArtistID: rec.ArtistID,
			Year:     rec.Year,
			Duration: rec.Duration,
		})
	}
	stats.Output = len(songs)
	return songs, stats
}

// ExtractArtists projects the song catalog into the artists dimension.
// Records without an artist_id are dropped, and the first record in input
// order wins for each artist_id, even if later records disagree on the
// artist's name or location.
func ExtractArtists(recs []SongRecord) ([]Artist, TableStats) {
	stats := TableStats{Table: TableArtists, Input: len(recs)}
	seen := make(map[string]struct{})
	artists := make([]Artist, 0)
	for _, rec := range recs {
		if rec.ArtistID == "" {
			stats.NullKey++
			continue
		}
		if _, ok := seen[rec.ArtistID]; ok {
			stats.Duplicates++
			continue
		}
		seen[rec.ArtistID] = struct{}{}
		artists = append(artists, Artist{
			ArtistID:  rec.ArtistID,
			Name:      rec.ArtistName,
			Location:  rec.ArtistLocation,
			Latitude:  rec.ArtistLatitude,
			Longitude: rec.ArtistLongitude,
		})
	}
	stats.Output = len(artists)
	return artists, stats
}

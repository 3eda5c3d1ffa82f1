package starschema

import (
	"time"
)

// Output table names. Each is also the directory name of the table below the
// destination root.
const (
	TableSongs     = "songs"
	TableArtists   = "artists"
	TableUsers     = "users"
	TableTime      = "time"
	TableSongplays = "songplays"
)

// Song is a row of the songs dimension.
type Song struct {
	SongID   string  `parquet:"song_id"`
	Title    string  `parquet:"title"`
	ArtistID string  `parquet:"artist_id,optional"`
	Year     int     `parquet:"year"`
	Duration float64 `parquet:"duration"`
}

// Artist is a row of the artists dimension.
type Artist struct {
	ArtistID  string   `parquet:"artist_id"`
	Name      string   `parquet:"name"`
	Location  string   `parquet:"location,optional"`
	Latitude  *float64 `parquet:"latitude,optional"`
	Longitude *float64 `parquet:"longitude,optional"`
	Geohash   string   `parquet:"geohash,optional"`
}

// User is a row of the users dimension.
type User struct {
	UserID    string `parquet:"user_id"`
	FirstName string `parquet:"first_name,optional"`
	LastName  string `parquet:"last_name,optional"`
	Gender    string `parquet:"gender,optional"`
	Level     string `parquet:"level"`
}

// Time is a row of the time dimension. Weekday runs from 0 (Sunday) to 6
// (Saturday) and Week is the ISO 8601 week number.
type Time struct {
	StartTime time.Time `parquet:"start_time,timestamp(millisecond)"`
	Hour      int       `parquet:"hour"`
	Day       int       `parquet:"day"`
	Week      int       `parquet:"week"`
	Month     int       `parquet:"month"`
	Year      int       `parquet:"year"`
	Weekday   int       `parquet:"weekday"`
}

// Songplay is a row of the songplays fact table. SongID and ArtistID are nil
// when the event could not be matched to a song record.
type Songplay struct {
	SongplayID int64     `parquet:"songplay_id"`
	StartTime  time.Time `parquet:"start_time,timestamp(millisecond)"`
	UserID     string    `parquet:"user_id"`
	Level      string    `parquet:"level"`
	SongID     *string   `parquet:"song_id,optional"`
	ArtistID   *string   `parquet:"artist_id,optional"`
	SessionID  int64     `parquet:"session_id"`
	Location   string    `parquet:"location,optional"`
	UserAgent  string    `parquet:"user_agent,optional"`
	Year       int       `parquet:"year"`
	Month      int       `parquet:"month"`
}

// TableStats describes how a dimension was reduced from its input rows.
type TableStats struct {
	Table string

	// Input is the number of records offered to the extractor.
	Input int
	// NullKey is the number of records dropped for lacking a primary key.
	NullKey int
	// Duplicates is the number of records dropped because an earlier (or, for
	// users, a more recent) record with the same key won.
	Duplicates int
	// Output is the number of rows in the table.
	Output int
}

// Excluded is the number of input records which did not become a row.
func (s TableStats) Excluded() int { return s.NullKey + s.Duplicates }

func (s TableStats) report(stats Statter, log Logger) {
	stats.Count(s.Table+".input", int64(s.Input), 1)
	stats.Count(s.Table+".excluded.null_key", int64(s.NullKey), 1)
	stats.Count(s.Table+".excluded.duplicate", int64(s.Duplicates), 1)
	stats.Count(s.Table+".rows", int64(s.Output), 1)
	log.Printf("%s: %d rows from %d records (%d without key, %d duplicates)", s.Table, s.Output, s.Input, s.NullKey, s.Duplicates)
}

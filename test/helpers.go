// Package test holds fixtures shared by the tests of the starschema packages.
package test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Song is a song catalog record as it appears in song_data.
type Song struct {
	SongID          interface{} `json:"song_id"`
	Title           string      `json:"title"`
	ArtistID        interface{} `json:"artist_id"`
	ArtistName      string      `json:"artist_name"`
	ArtistLocation  string      `json:"artist_location"`
	ArtistLatitude  interface{} `json:"artist_latitude"`
	ArtistLongitude interface{} `json:"artist_longitude"`
	Year            int         `json:"year"`
	Duration        float64     `json:"duration"`
	NumSongs        int         `json:"num_songs"`
}

// JSON renders the record as one line of JSON.
func (s Song) JSON() string { return mustJSON(s) }

// Event is an activity log event as it appears in log_data.
type Event struct {
	UserID    interface{} `json:"userId"`
	FirstName string      `json:"firstName,omitempty"`
	LastName  string      `json:"lastName,omitempty"`
	Gender    string      `json:"gender,omitempty"`
	Level     string      `json:"level"`
	Page      string      `json:"page"`
	Song      interface{} `json:"song"`
	Artist    interface{} `json:"artist"`
	Length    interface{} `json:"length"`
	SessionID int64       `json:"sessionId"`
	Location  string      `json:"location,omitempty"`
	UserAgent string      `json:"userAgent,omitempty"`
	TS        int64       `json:"ts"`
}

// JSON renders the event as one line of JSON.
func (e Event) JSON() string { return mustJSON(e) }

// Listen returns a NextSong event of user playing song by artist.
func Listen(user string, ts int64, song, artist string, length float64) Event {
	return Event{
		UserID:    user,
		FirstName: "First" + user,
		LastName:  "Last" + user,
		Gender:    "F",
		Level:     "free",
		Page:      "NextSong",
		Song:      song,
		Artist:    artist,
		Length:    length,
		SessionID: 100,
		Location:  "Chicago, IL",
		UserAgent: "Mozilla/5.0",
		TS:        ts,
	}
}

// Lines joins records into newline delimited JSON.
func Lines(recs ...string) string {
	return strings.Join(recs, "\n") + "\n"
}

// MustWriteFile writes contents to rel below dir, creating directories as
// needed.
func MustWriteFile(t *testing.T, dir, rel, contents string) string {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatalf("making directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(p, []byte(contents), 0644); err != nil {
		t.Fatalf("writing %s: %v", rel, err)
	}
	return p
}

func mustJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

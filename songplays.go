package starschema

import (
	"sort"
)

// SongplayOptions controls how listen events are matched to song records.
type SongplayOptions struct {
	// IgnoreDuration matches on (title, artist name) alone instead of also
	// requiring the event length to equal the song duration.
	IgnoreDuration bool
}

// MatchStats describes how many listen events found their song record.
type MatchStats struct {
	Events  int
	Matched int
}

// Rate is the fraction of events which matched a song, or 0 if there were no
// events.
func (m MatchStats) Rate() float64 {
	if m.Events == 0 {
		return 0
	}
	return float64(m.Matched) / float64(m.Events)
}

type songKey struct {
	title    string
	artist   string
	duration string
}

type songRef struct {
	songID   string
	artistID string
}

// songIndex maps the natural key of each song record to its ids. The activity
// log has no foreign key into the catalog, so the title, artist name and
// duration are all there is to go on. Comparison is exact and case sensitive;
// "The Beatles" and "Beatles, The" don't match. Durations compare as exact
// decimals taken from the source text, so 200.5 matches 200.50 but not
// 200.50000000000000001.
type songIndex struct {
	withDuration bool
	refs         map[songKey]songRef
}

func newSongIndex(recs []SongRecord, withDuration bool) *songIndex {
	idx := &songIndex{
		withDuration: withDuration,
		refs:         make(map[songKey]songRef, len(recs)),
	}
	for _, rec := range recs {
		if rec.SongID == "" || rec.Title == "" || rec.ArtistName == "" {
			continue
		}
		k := songKey{title: rec.Title, artist: rec.ArtistName}
		if withDuration {
			k.duration = rec.DurationExact
			if k.duration == "" {
				k.duration = floatDecimal(rec.Duration)
			}
		}
		// first record wins, as for the songs table
		if _, ok := idx.refs[k]; !ok {
			idx.refs[k] = songRef{songID: rec.SongID, artistID: rec.ArtistID}
		}
	}
	return idx
}

func (idx *songIndex) lookup(rec ActivityRecord) (songRef, bool) {
	if rec.Song == "" || rec.Artist == "" {
		return songRef{}, false
	}
	k := songKey{title: rec.Song, artist: rec.Artist}
	if idx.withDuration {
		switch {
		case rec.LengthExact != "":
			k.duration = rec.LengthExact
		case rec.Length != nil:
			k.duration = floatDecimal(*rec.Length)
		default:
			return songRef{}, false
		}
	}
	ref, ok := idx.refs[k]
	return ref, ok
}

// BuildSongplays left joins listen events against the song catalog and returns
// one songplay per event; events with no matching song keep nil song and
// artist ids. Events without a timestamp can't be placed in time and are
// skipped, which FilterListens has already done for its output. Events are ordered by (start time, session, user), with input
// order breaking any remaining ties, and songplay ids are assigned from 1 in
// that order, so the same input always produces the same ids.
func BuildSongplays(listens []ActivityRecord, songs []SongRecord, opts SongplayOptions) ([]Songplay, MatchStats) {
	idx := newSongIndex(songs, !opts.IgnoreDuration)

	order := make([]int, 0, len(listens))
	for i := range listens {
		if listens[i].HasTS {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := &listens[order[i]], &listens[order[j]]
		if a.TS != b.TS {
			return a.TS < b.TS
		}
		if a.SessionID != b.SessionID {
			return a.SessionID < b.SessionID
		}
		return a.UserID < b.UserID
	})

	ids := NewNexter(NexterStartFrom(1))
	stats := MatchStats{Events: len(order)}
	plays := make([]Songplay, len(order))
	for i, li := range order {
		rec := listens[li]
		start := StartTime(rec.TS)
		sp := Songplay{
			SongplayID: int64(ids.Next()),
			StartTime:  start,
			UserID:     rec.UserID,
			Level:      rec.Level,
			SessionID:  rec.SessionID,
			Location:   rec.Location,
			UserAgent:  rec.UserAgent,
			Year:       start.Year(),
			Month:      int(start.Month()),
		}
		if ref, ok := idx.lookup(rec); ok {
			stats.Matched++
			songID := ref.songID
			sp.SongID = &songID
			if ref.artistID != "" {
				artistID := ref.artistID
				sp.ArtistID = &artistID
			}
		}
		plays[i] = sp
	}
	return plays, stats
}

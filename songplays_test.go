package starschema_test

import (
	"context"
	"testing"

	"github.com/pilosa/starschema"
	"github.com/pilosa/starschema/mock"
	"github.com/pilosa/starschema/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listen(user string, ts int64, song, artist string, length float64) starschema.ActivityRecord {
	rec := event(user, "free", ts)
	rec.Song, rec.Artist, rec.Length = song, artist, f64(length)
	rec.Location, rec.UserAgent = "Chicago, IL", "Mozilla/5.0"
	return rec
}

func TestBuildSongplaysMatch(t *testing.T) {
	plays, stats := starschema.BuildSongplays(
		[]starschema.ActivityRecord{listen("7", 1541440182796, "Test", "Artist A", 200.5)},
		catalog(),
		starschema.SongplayOptions{},
	)
	require.Len(t, plays, 1)
	sp := plays[0]
	require.NotNil(t, sp.SongID)
	require.NotNil(t, sp.ArtistID)
	assert.Equal(t, "SOA", *sp.SongID)
	assert.Equal(t, "ARA", *sp.ArtistID)
	assert.Equal(t, int64(1), sp.SongplayID)
	assert.Equal(t, "7", sp.UserID)
	assert.Equal(t, "free", sp.Level)
	assert.Equal(t, int64(1), sp.SessionID)
	assert.Equal(t, "Chicago, IL", sp.Location)
	assert.Equal(t, "Mozilla/5.0", sp.UserAgent)
	assert.Equal(t, 2018, sp.Year)
	assert.Equal(t, 11, sp.Month)
	assert.Equal(t, int64(1541440182796), sp.StartTime.UnixMilli())
	assert.Equal(t, starschema.MatchStats{Events: 1, Matched: 1}, stats)
	assert.Equal(t, 1.0, stats.Rate())
}

func TestBuildSongplaysUnmatched(t *testing.T) {
	tests := []struct {
		name   string
		listen starschema.ActivityRecord
		opts   starschema.SongplayOptions
		match  bool
	}{
		{name: "unknown song", listen: listen("1", 1, "Unknown Song", "Artist A", 200.5)},
		{name: "case differs", listen: listen("1", 1, "test", "Artist A", 200.5)},
		{name: "duration differs", listen: listen("1", 1, "Test", "Artist A", 200.25)},
		{name: "duration ignored", listen: listen("1", 1, "Test", "Artist A", 200.25), opts: starschema.SongplayOptions{IgnoreDuration: true}, match: true},
		{name: "no length", listen: func() starschema.ActivityRecord {
			l := listen("1", 1, "Test", "Artist A", 0)
			l.Length = nil
			return l
		}()},
		{name: "keyless song record never matches", listen: listen("1", 1, "Keyless", "Artist B", 100)},
	}
	for _, tst := range tests {
		t.Run(tst.name, func(t *testing.T) {
			plays, stats := starschema.BuildSongplays([]starschema.ActivityRecord{tst.listen}, catalog(), tst.opts)
			require.Len(t, plays, 1)
			if tst.match {
				assert.NotNil(t, plays[0].SongID)
				assert.Equal(t, 1, stats.Matched)
				return
			}
			assert.Nil(t, plays[0].SongID)
			assert.Nil(t, plays[0].ArtistID)
			assert.Equal(t, 0, stats.Matched)
			assert.Equal(t, 0.0, stats.Rate())
		})
	}
}

func TestBuildSongplaysSongWithoutArtist(t *testing.T) {
	plays, _ := starschema.BuildSongplays([]starschema.ActivityRecord{listen("1", 1, "Other", "Nobody", 99.25)}, catalog(), starschema.SongplayOptions{})
	require.Len(t, plays, 1)
	require.NotNil(t, plays[0].SongID)
	assert.Equal(t, "SOC", *plays[0].SongID)
	assert.Nil(t, plays[0].ArtistID)
}

func TestBuildSongplaysOrder(t *testing.T) {
	a := listen("2", 500, "x", "y", 1)
	a.SessionID = 9
	b := listen("1", 500, "x", "y", 1)
	b.SessionID = 9
	c := listen("3", 500, "x", "y", 1)
	c.SessionID = 2
	d := listen("1", 100, "x", "y", 1)
	in := []starschema.ActivityRecord{a, b, c, d}

	plays, _ := starschema.BuildSongplays(in, nil, starschema.SongplayOptions{})
	require.Len(t, plays, 4)
	got := make([]string, len(plays))
	for i, sp := range plays {
		assert.Equal(t, int64(i+1), sp.SongplayID)
		got[i] = sp.UserID
	}
	assert.Equal(t, []string{"1", "3", "1", "2"}, got)

	// input order doesn't change the assignment
	again, _ := starschema.BuildSongplays([]starschema.ActivityRecord{d, c, b, a}, nil, starschema.SongplayOptions{})
	assert.Equal(t, plays, again)
}

func TestBuildSongplaysKeepsEveryEvent(t *testing.T) {
	listens := make([]starschema.ActivityRecord, 0, 100)
	for i := 0; i < 100; i++ {
		if i%3 == 0 {
			listens = append(listens, listen("1", int64(i), "Test", "Artist A", 200.5))
		} else {
			listens = append(listens, listen("2", int64(i), "Nope", "Nobody", 1))
		}
	}
	plays, stats := starschema.BuildSongplays(listens, catalog(), starschema.SongplayOptions{})
	assert.Len(t, plays, 100)
	assert.Equal(t, 34, stats.Matched)
	assert.InDelta(t, 0.34, stats.Rate(), 1e-9)
}

func TestBuildSongplaysExactDuration(t *testing.T) {
	ctx := context.Background()
	songs, _, err := starschema.ReadSongs(ctx, mock.NewRawSource(test.Lines(
		`{"song_id":"SOA","title":"Test","artist_id":"ARA","artist_name":"Artist A","duration":200.50,"year":2004}`,
		`{"song_id":"SOB","title":"Long","artist_id":"ARB","artist_name":"Artist B","duration":218.93179,"year":1999}`,
		`{"song_id":"SOC","title":"Quoted","artist_id":"ARC","artist_name":"Artist C","duration":"2.5e1","year":1999}`,
	)))
	require.NoError(t, err)

	line := func(user, song, artist, length string) string {
		return `{"userId":"` + user + `","page":"NextSong","level":"free","sessionId":1,"ts":1541440182796,` +
			`"song":"` + song + `","artist":"` + artist + `","length":` + length + `}`
	}
	events, _, err := starschema.ReadActivity(ctx, mock.NewRawSource(test.Lines(
		line("1", "Test", "Artist A", "200.5"),
		// equal as a float64, but not as a decimal
		line("2", "Long", "Artist B", "218.931790000000000001"),
		line("3", "Long", "Artist B", "218.931790"),
		line("4", "Quoted", "Artist C", "25"),
	)))
	require.NoError(t, err)

	plays, stats := starschema.BuildSongplays(events, songs, starschema.SongplayOptions{})
	require.Len(t, plays, 4)
	got := map[string]*string{}
	for _, sp := range plays {
		got[sp.UserID] = sp.SongID
	}
	require.NotNil(t, got["1"])
	assert.Equal(t, "SOA", *got["1"])
	assert.Nil(t, got["2"])
	require.NotNil(t, got["3"])
	assert.Equal(t, "SOB", *got["3"])
	require.NotNil(t, got["4"])
	assert.Equal(t, "SOC", *got["4"])
	assert.Equal(t, 3, stats.Matched)

	// without the duration term the float-equal event matches too
	_, loose := starschema.BuildSongplays(events, songs, starschema.SongplayOptions{IgnoreDuration: true})
	assert.Equal(t, 4, loose.Matched)
}

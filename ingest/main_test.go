package ingest_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pilosa/starschema"
	"github.com/pilosa/starschema/ingest"
	"github.com/pilosa/starschema/test"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDatasets(t *testing.T, root string) {
	t.Helper()
	test.MustWriteFile(t, root, "song_data/A/A/A/TRAAA.json", test.Lines(test.Song{
		SongID: "SOA", Title: "Test", ArtistID: "ARA", ArtistName: "Artist A",
		ArtistLatitude: 57.64911, ArtistLongitude: 10.40744, Year: 2004, Duration: 200.5,
	}.JSON()))
	test.MustWriteFile(t, root, "song_data/A/A/B/TRAAB.json", test.Lines(test.Song{
		SongID: "SOB", Title: "Second", ArtistID: "ARB", ArtistName: "Artist B", Duration: 180,
	}.JSON()))
	test.MustWriteFile(t, root, "log_data/2018/11/2018-11-05-events.json", test.Lines(
		test.Listen("10", 1541440182796, "Test", "Artist A", 200.5).JSON(),
		test.Listen("20", 1541440282796, "Nothing", "Nobody", 10).JSON(),
		test.Event{UserID: "10", Page: "Home", Level: "free", TS: 1541440000000}.JSON(),
	))
}

func listFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			rel, _ := filepath.Rel(root, p)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	return files
}

func newMain(src, dst string) (*ingest.Main, *bytes.Buffer) {
	out := &bytes.Buffer{}
	m := ingest.NewMain()
	m.SourceRoot = src
	m.DestRoot = dst
	m.Stdout = out
	m.Stderr = &bytes.Buffer{}
	return m, out
}

func TestMainRun(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeDatasets(t, src)

	m, out := newMain(src, dst)
	m.Stats = true
	m.LogPath = filepath.Join(t.TempDir(), "run.log")
	rep, err := m.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Songs.Records)
	assert.Equal(t, 3, rep.Activity.Records)
	assert.Equal(t, starschema.FilterStats{Events: 3, NonListens: 1}, rep.Filter)
	assert.Equal(t, starschema.MatchStats{Events: 2, Matched: 1}, rep.Match)

	files := listFiles(t, dst)
	assert.Contains(t, files, "songs/year=2004/artist_id=ARA/part-00000.parquet")
	assert.Contains(t, files, "songs/year=0/artist_id=ARB/part-00000.parquet")
	assert.Contains(t, files, "artists/part-00000.parquet")
	assert.Contains(t, files, "users/part-00000.parquet")
	assert.Contains(t, files, "time/year=2018/month=11/part-00000.parquet")
	assert.Contains(t, files, "songplays/year=2018/month=11/part-00000.parquet")
	for _, table := range []string{"songs", "artists", "users", "time", "songplays"} {
		assert.Contains(t, files, table+"/_SUCCESS")
	}

	assert.Contains(t, out.String(), "songplays.rows")
	logged, err := os.ReadFile(m.LogPath)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(logged), `"level":"info"`), "log file: %s", logged)

	// a second run over the same destination yields the same tree
	m2, _ := newMain(src, dst)
	_, err = m2.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, files, listFiles(t, dst))
}

func TestMainRunMissingDataset(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	test.MustWriteFile(t, src, "song_data/song.json", test.Lines(test.Song{
		SongID: "SOA", Title: "Test", ArtistID: "ARA", ArtistName: "Artist A", Duration: 1,
	}.JSON()))

	m, _ := newMain(src, dst)
	_, err := m.Run(context.Background())
	require.Error(t, err)
	var ie *starschema.IngestError
	require.True(t, errors.As(err, &ie), "unexpected error %v", err)
	assert.Equal(t, starschema.DatasetActivity, ie.Dataset)
	assert.Empty(t, listFiles(t, dst))
}

func TestMainRunBadConfig(t *testing.T) {
	m, _ := newMain("", t.TempDir())
	_, err := m.Run(context.Background())
	assert.Error(t, err)

	m, _ = newMain(t.TempDir(), "ftp://host/x")
	_, err = m.Run(context.Background())
	assert.Error(t, err)
}

package cmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pilosa/starschema/cmd"
	"github.com/pilosa/starschema/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDatasets(t *testing.T, root string) {
	t.Helper()
	test.MustWriteFile(t, root, "song_data/TRAAA.json", test.Lines(test.Song{
		SongID: "SOA", Title: "Test", ArtistID: "ARA", ArtistName: "Artist A", Year: 2004, Duration: 200.5,
	}.JSON()))
	test.MustWriteFile(t, root, "log_data/events.json", test.Lines(
		test.Listen("10", 1541440182796, "Test", "Artist A", 200.5).JSON(),
	))
}

func TestRunCommand(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeDatasets(t, src)

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	rc := cmd.NewRootCommand(&bytes.Buffer{}, stdout, stderr)
	rc.SetArgs([]string{"run", "--source-root", src, "--dest-root", dst, "--ignore-duration", "--geohash-precision", "0"})
	require.NoError(t, rc.Execute(), "stderr: %s", stderr)

	assert.Equal(t, src, cmd.RunMain.SourceRoot)
	assert.True(t, cmd.RunMain.IgnoreDuration)
	assert.Equal(t, uint(0), cmd.RunMain.GeohashPrecision)
	_, err := os.Stat(filepath.Join(dst, "songplays", "_SUCCESS"))
	assert.NoError(t, err)
}

func TestRunCommandEnv(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeDatasets(t, src)
	t.Setenv("STARSCHEMA_SOURCE_ROOT", src)
	t.Setenv("STARSCHEMA_DEST_ROOT", dst)

	stderr := &bytes.Buffer{}
	rc := cmd.NewRootCommand(&bytes.Buffer{}, &bytes.Buffer{}, stderr)
	rc.SetArgs([]string{"run"})
	require.NoError(t, rc.Execute(), "stderr: %s", stderr)

	assert.Equal(t, dst, cmd.RunMain.DestRoot)
	_, err := os.Stat(filepath.Join(dst, "users", "part-00000.parquet"))
	assert.NoError(t, err)
}

func TestRunCommandMissingSource(t *testing.T) {
	rc := cmd.NewRootCommand(&bytes.Buffer{}, &bytes.Buffer{}, &bytes.Buffer{})
	rc.SetArgs([]string{"run", "--source-root", filepath.Join(t.TempDir(), "nope"), "--dest-root", t.TempDir()})
	assert.Error(t, rc.Execute())
}

func TestRunCommandConfigFile(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeDatasets(t, src)
	conf := test.MustWriteFile(t, t.TempDir(), "starschema.toml",
		"source-root = \""+filepath.ToSlash(src)+"\"\ndest-root = \""+filepath.ToSlash(dst)+"\"\ngeohash-precision = 4\n")

	rc := cmd.NewRootCommand(&bytes.Buffer{}, &bytes.Buffer{}, &bytes.Buffer{})
	// the command line beats the file
	rc.SetArgs([]string{"run", "--config", conf, "--geohash-precision", "5"})
	require.NoError(t, rc.Execute())

	assert.Equal(t, filepath.ToSlash(dst), cmd.RunMain.DestRoot)
	assert.Equal(t, uint(5), cmd.RunMain.GeohashPrecision)
	_, err := os.Stat(filepath.Join(dst, "artists", "_SUCCESS"))
	assert.NoError(t, err)
}

package starschema

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"sort"

	"github.com/parquet-go/parquet-go"
	"github.com/pkg/errors"
)

const (
	// PartFile is the name of the parquet file in every partition directory.
	PartFile = "part-00000.parquet"

	// SuccessMarker is written below a table's directory once every partition
	// of the table has been written.
	SuccessMarker = "_SUCCESS"

	// NullPartition names the partition directory for a null or empty
	// partition value.
	NullPartition = "__HIVE_DEFAULT_PARTITION__"
)

// Writer persists tables to a Store as snappy compressed parquet, one
// directory per table, partitioned with key=value directories.
//
// Writing a table first removes everything below the table's directory, so
// writing the same rows twice leaves the same files behind.
type Writer struct {
	store Store
	log   Logger
	stats Statter
}

// NewWriter returns a Writer persisting to store.
func NewWriter(store Store, log Logger, stats Statter) *Writer {
	if log == nil {
		log = NopLogger{}
	}
	if stats == nil {
		stats = NopStatter{}
	}
	return &Writer{store: store, log: log, stats: stats}
}

// WriteSongs writes the songs table partitioned by year and artist_id.
func (w *Writer) WriteSongs(ctx context.Context, rows []Song) error {
	return writeTable(ctx, w, TableSongs, rows, func(s Song) []string {
		return []string{partition("year", s.Year), partition("artist_id", s.ArtistID)}
	})
}

// WriteArtists writes the unpartitioned artists table.
func (w *Writer) WriteArtists(ctx context.Context, rows []Artist) error {
	return writeTable(ctx, w, TableArtists, rows, nil)
}

// WriteUsers writes the unpartitioned users table.
func (w *Writer) WriteUsers(ctx context.Context, rows []User) error {
	return writeTable(ctx, w, TableUsers, rows, nil)
}

// WriteTime writes the time table partitioned by year and month.
func (w *Writer) WriteTime(ctx context.Context, rows []Time) error {
	return writeTable(ctx, w, TableTime, rows, func(t Time) []string {
		return []string{partition("year", t.Year), partition("month", t.Month)}
	})
}

// WriteSongplays writes the songplays table partitioned by year and month.
func (w *Writer) WriteSongplays(ctx context.Context, rows []Songplay) error {
	return writeTable(ctx, w, TableSongplays, rows, func(sp Songplay) []string {
		return []string{partition("year", sp.Year), partition("month", sp.Month)}
	})
}

func partition(key string, val interface{}) string {
	v := fmt.Sprint(val)
	if v == "" {
		v = NullPartition
	}
	return key + "=" + url.PathEscape(v)
}

// writeTable groups rows by their partition directory and writes one file per
// partition. A nil partitioner puts every row in a single file at the root of
// the table, which is written even when there are no rows so that readers see
// the schema.
func writeTable[T any](ctx context.Context, w *Writer, table string, rows []T, partitioner func(T) []string) error {
	if err := w.store.RemoveAll(ctx, table); err != nil {
		return writeErr(table, err, "clearing previous output")
	}

	groups := make(map[string][]T)
	if partitioner == nil {
		groups[""] = rows
	} else {
		for _, row := range rows {
			dir := path.Join(partitioner(row)...)
			groups[dir] = append(groups[dir], row)
		}
	}
	dirs := make([]string, 0, len(groups))
	for dir := range groups {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	var size Bytes
	for _, dir := range dirs {
		p := path.Join(table, dir, PartFile)
		n, err := writeParquet(ctx, w.store, p, groups[dir])
		if err != nil {
			return writeErr(table, err, "writing "+p)
		}
		size += n
		w.log.Debugf("wrote %d rows (%v) to %s", len(groups[dir]), n, p)
	}
	if err := writeMarker(ctx, w.store, path.Join(table, SuccessMarker)); err != nil {
		return writeErr(table, err, "writing success marker")
	}

	w.stats.Count(table+".partitions", int64(len(dirs)), 1)
	w.stats.Count(table+".bytes", int64(size), 1)
	w.log.Printf("%s: wrote %d rows in %d partitions (%v)", table, len(rows), len(dirs), size)
	return nil
}

func writeParquet[T any](ctx context.Context, store Store, p string, rows []T) (_ Bytes, err error) {
	f, err := store.Create(ctx, p)
	if err != nil {
		return 0, errors.Wrap(err, "creating file")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "closing file")
		}
	}()

	cw := &countingWriter{w: f}
	pw := parquet.NewGenericWriter[T](cw, parquet.Compression(&parquet.Snappy))
	if _, err := pw.Write(rows); err != nil {
		_ = pw.Close()
		return cw.n, errors.Wrap(err, "writing rows")
	}
	if err := pw.Close(); err != nil {
		return cw.n, errors.Wrap(err, "closing parquet writer")
	}
	return cw.n, nil
}

func writeMarker(ctx context.Context, store Store, p string) error {
	f, err := store.Create(ctx, p)
	if err != nil {
		return errors.Wrap(err, "creating marker")
	}
	return errors.Wrap(f.Close(), "closing marker")
}

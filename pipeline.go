package starschema

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Tables is the star schema produced by one run.
type Tables struct {
	Songs     []Song
	Artists   []Artist
	Users     []User
	Time      []Time
	Songplays []Songplay
}

// Report summarizes a run: what was read, how each table was reduced from its
// records, and how well listen events matched the song catalog.
type Report struct {
	Songs    ReadStats
	Activity ReadStats

	// Filter tells which activity events FilterListens dropped.
	Filter FilterStats

	// Tables holds the stats of every output table, in write order.
	Tables []TableStats

	Match MatchStats
}

// Table returns the stats for the named table.
func (r *Report) Table(name string) (TableStats, bool) {
	for _, ts := range r.Tables {
		if ts.Table == name {
			return ts, true
		}
	}
	return TableStats{}, false
}

// Transform derives every table of the star schema from the raw records. It
// does no I/O and doesn't modify its arguments.
func Transform(songRecs []SongRecord, events []ActivityRecord, opts SongplayOptions) (*Tables, *Report) {
	t := &Tables{}
	r := &Report{}

	var songStats, artistStats, userStats, timeStats TableStats
	t.Songs, songStats = ExtractSongs(songRecs)
	t.Artists, artistStats = ExtractArtists(songRecs)

	listens, filtered := FilterListens(events)
	r.Filter = filtered
	t.Users, userStats = ExtractUsers(listens)
	t.Time, timeStats = BuildTime(listens)
	t.Songplays, r.Match = BuildSongplays(listens, songRecs, opts)

	// listens without a user or a time never reach the extractors, but they
	// are still rows those tables lost to a null key
	userStats.Input += filtered.NullUser
	userStats.NullKey += filtered.NullUser
	timeStats.Input += filtered.NullTS
	timeStats.NullKey += filtered.NullTS
	playStats := TableStats{
		Table:   TableSongplays,
		Input:   len(listens) + filtered.NullUser + filtered.NullTS,
		NullKey: filtered.NullUser + filtered.NullTS,
		Output:  len(t.Songplays),
	}

	r.Tables = []TableStats{songStats, artistStats, userStats, timeStats, playStats}
	return t, r
}

// Pipeline runs the whole ETL: it reads both datasets, transforms them into
// the star schema, and writes every table. Everything it touches is handed to
// it, so the same pipeline runs against local files, S3, or in memory
// fixtures.
type Pipeline struct {
	Songs    RawSource
	Activity RawSource
	Store    Store

	Options            SongplayOptions
	ArtistTransformers []ArtistTransformer

	Log   Logger
	Stats Statter
}

// Run executes the pipeline. Nothing is written unless both datasets were read
// and transformed successfully, and the first failed write aborts the rest.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	if p.Songs == nil || p.Activity == nil {
		return nil, errors.New("pipeline needs both a songs and an activity source")
	}
	if p.Store == nil {
		return nil, errors.New("pipeline needs a store")
	}
	log, stats := p.Log, p.Stats
	if log == nil {
		log = NopLogger{}
	}
	if stats == nil {
		stats = NopStatter{}
	}
	start := time.Now()

	// The two datasets are independent until songplays join them.
	var (
		songRecs           []SongRecord
		events             []ActivityRecord
		songRead, actsRead ReadStats
	)
	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		songRecs, songRead, err = ReadSongs(gctx, p.Songs)
		return err
	})
	eg.Go(func() (err error) {
		events, actsRead, err = ReadActivity(gctx, p.Activity)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	songRead.report(stats, log)
	actsRead.report(stats, log)

	tables, rep := Transform(songRecs, events, p.Options)
	rep.Songs, rep.Activity = songRead, actsRead
	for i := range tables.Artists {
		for _, t := range p.ArtistTransformers {
			if err := t.TransformArtist(&tables.Artists[i]); err != nil {
				return rep, errors.Wrapf(err, "transforming artist %s", tables.Artists[i].ArtistID)
			}
		}
	}

	stats.Count(DatasetActivity+".non_listens", int64(rep.Filter.NonListens), 1)
	stats.Count(DatasetActivity+".null_user", int64(rep.Filter.NullUser), 1)
	stats.Count(DatasetActivity+".null_ts", int64(rep.Filter.NullTS), 1)
	log.Printf("%s: kept %d of %d events as listens (%d other pages, %d without user, %d without ts)",
		DatasetActivity, rep.Filter.Listens(), rep.Filter.Events, rep.Filter.NonListens, rep.Filter.NullUser, rep.Filter.NullTS)
	for _, ts := range rep.Tables {
		ts.report(stats, log)
	}
	stats.Count("songplays.matched", int64(rep.Match.Matched), 1)
	stats.Gauge("songplays.match_rate", rep.Match.Rate(), 1)
	log.Printf("songplays: matched %d of %d events to a song (%.1f%%)", rep.Match.Matched, rep.Match.Events, 100*rep.Match.Rate())

	w := NewWriter(p.Store, log, stats)
	writes := []func(context.Context) error{
		func(ctx context.Context) error { return w.WriteSongs(ctx, tables.Songs) },
		func(ctx context.Context) error { return w.WriteArtists(ctx, tables.Artists) },
		func(ctx context.Context) error { return w.WriteUsers(ctx, tables.Users) },
		func(ctx context.Context) error { return w.WriteTime(ctx, tables.Time) },
		func(ctx context.Context) error { return w.WriteSongplays(ctx, tables.Songplays) },
	}
	for _, write := range writes {
		if err := write(ctx); err != nil {
			return rep, err
		}
	}

	stats.Timing("run", time.Since(start), 1)
	log.Printf("run finished in %v", time.Since(start))
	return rep, nil
}

// Package ingest is the entry point of a pipeline run: it turns a source root
// and a destination root into the sources, store, logger and stats collector
// a starschema.Pipeline needs, and runs it.
package ingest

import (
	"context"
	"io"
	"os"

	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/pilosa/starschema"
	"github.com/pilosa/starschema/aws/s3"
	"github.com/pilosa/starschema/file"
	"github.com/pilosa/starschema/geohash"
	"github.com/pilosa/starschema/termstat"
	"github.com/pkg/errors"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
)

// Main holds all config for a pipeline run.
type Main struct {
	SourceRoot       string `help:"Root of the raw datasets, a directory or s3://bucket/prefix. Songs are read from <root>/song_data and events from <root>/log_data."`
	DestRoot         string `help:"Root to write the tables below, a directory or s3://bucket/prefix. Existing tables there are replaced."`
	Region           string `help:"AWS region to use for s3:// locations."`
	Endpoint         string `help:"S3 endpoint override, for S3 compatible object stores."`
	IgnoreDuration   bool   `help:"Match events to songs on title and artist name only, ignoring duration."`
	GeohashPrecision uint   `help:"Length of the geohash derived for artists with coordinates. 0 disables it."`
	LogPath          string `help:"Log file to write to in addition to stderr."`
	Verbose          bool   `help:"Enable verbose logging."`
	Stats            bool   `help:"Print a summary of the run statistics when done."`

	Stdout io.Writer `flag:"-"`
	Stderr io.Writer `flag:"-"`

	log  *logrus.Logger
	sess *session.Session
}

// NewMain gets a new Main with the default configuration.
func NewMain() *Main {
	return &Main{
		Region:           "us-west-2",
		GeohashPrecision: geohash.DefaultPrecision,
		Stdout:           os.Stdout,
		Stderr:           os.Stderr,
	}
}

// Log returns the logger of the last run.
func (m *Main) Log() *logrus.Logger { return m.log }

// Run reads the datasets below SourceRoot and writes every table below
// DestRoot.
func (m *Main) Run(ctx context.Context) (*starschema.Report, error) {
	src, dst, err := m.validate()
	if err != nil {
		return nil, errors.Wrap(err, "validating configuration")
	}
	logFile, err := m.setupLog()
	if err != nil {
		return nil, errors.Wrap(err, "setting up logging")
	}
	if logFile != nil {
		defer logFile.Close()
	}

	var stats starschema.Statter = starschema.NopStatter{}
	var collector *termstat.Collector
	if m.Stats {
		collector = termstat.NewCollector(m.Stdout)
		stats = collector
	}

	p := &starschema.Pipeline{
		Options: starschema.SongplayOptions{IgnoreDuration: m.IgnoreDuration},
		Log:     m.log,
		Stats:   stats,
	}
	if m.GeohashPrecision > 0 {
		p.ArtistTransformers = append(p.ArtistTransformers, &geohash.Transformer{Precision: m.GeohashPrecision})
	}
	if p.Songs, err = m.rawSource(ctx, src.sub(starschema.DatasetSongs)); err != nil {
		return nil, &starschema.IngestError{Dataset: starschema.DatasetSongs, Err: err}
	}
	if p.Activity, err = m.rawSource(ctx, src.sub(starschema.DatasetActivity)); err != nil {
		return nil, &starschema.IngestError{Dataset: starschema.DatasetActivity, Err: err}
	}
	if p.Store, err = m.store(dst); err != nil {
		return nil, errors.Wrap(err, "setting up destination")
	}

	m.log.Printf("running pipeline from %s to %s", src, dst)
	rep, err := p.Run(ctx)
	if err != nil {
		m.log.WithError(err).Error("pipeline failed")
		return rep, err
	}
	if collector != nil {
		if err := collector.Flush(); err != nil {
			return rep, errors.Wrap(err, "printing stats")
		}
	}
	return rep, nil
}

func (m *Main) validate() (src, dst location, err error) {
	if src, err = parseLocation(m.SourceRoot); err != nil {
		return src, dst, errors.Wrap(err, "source root")
	}
	if dst, err = parseLocation(m.DestRoot); err != nil {
		return src, dst, errors.Wrap(err, "destination root")
	}
	if m.Stdout == nil {
		m.Stdout = io.Discard
	}
	if m.Stderr == nil {
		m.Stderr = io.Discard
	}
	return src, dst, nil
}

// setupLog builds the run's logger: text to stderr, and JSON lines to LogPath
// if one is set. The returned file, if any, must be closed after the run.
func (m *Main) setupLog() (*os.File, error) {
	m.log = logrus.New()
	m.log.SetOutput(m.Stderr)
	m.log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	if m.Verbose {
		m.log.SetLevel(logrus.DebugLevel)
	} else {
		m.log.SetLevel(logrus.InfoLevel)
	}
	if m.LogPath == "" {
		return nil, nil
	}
	f, err := os.OpenFile(m.LogPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, errors.Wrap(err, "opening log file")
	}
	m.log.AddHook(lfshook.NewHook(f, &logrus.JSONFormatter{}))
	return f, nil
}

func (m *Main) s3Client() (*awss3.S3, error) {
	if m.sess == nil {
		sess, err := s3.NewSession(m.Region, m.Endpoint)
		if err != nil {
			return nil, err
		}
		m.sess = sess
	}
	return awss3.New(m.sess), nil
}

func (m *Main) rawSource(ctx context.Context, loc location) (starschema.RawSource, error) {
	if !loc.isS3() {
		rs, err := file.NewRawSource(loc.path)
		return rs, errors.Wrapf(err, "opening %s", loc)
	}
	svc, err := m.s3Client()
	if err != nil {
		return nil, err
	}
	rs, err := s3.NewRawSource(ctx, svc, loc.bucket, loc.path)
	return rs, errors.Wrapf(err, "opening %s", loc)
}

func (m *Main) store(loc location) (starschema.Store, error) {
	if !loc.isS3() {
		st, err := file.NewStore(loc.path)
		return st, errors.Wrapf(err, "opening %s", loc)
	}
	svc, err := m.s3Client()
	if err != nil {
		return nil, err
	}
	return s3.NewStoreFromClient(svc, loc.bucket, loc.path), nil
}

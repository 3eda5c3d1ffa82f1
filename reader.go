package starschema

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Dataset names. Each is also the directory holding the dataset below the
// source root.
const (
	DatasetSongs    = "song_data"
	DatasetActivity = "log_data"
)

var (
	songRequired     = []string{"song_id", "title", "artist_id", "artist_name", "duration"}
	activityRequired = []string{"page", "ts", "userId", "sessionId", "level"}
)

// ReadStats describes what the Record Reader found in a dataset.
type ReadStats struct {
	Dataset   string
	Objects   int
	Records   int
	Malformed int
}

func (s ReadStats) report(stats Statter, log Logger) {
	stats.Count(s.Dataset+".objects", int64(s.Objects), 1)
	stats.Count(s.Dataset+".records", int64(s.Records), 1)
	stats.Count(s.Dataset+".malformed", int64(s.Malformed), 1)
	log.Printf("%s: read %d records from %d objects (%d malformed lines skipped)", s.Dataset, s.Records, s.Objects, s.Malformed)
}

// ReadSongs reads every song record from src.
func ReadSongs(ctx context.Context, src RawSource) ([]SongRecord, ReadStats, error) {
	return readRecords(ctx, src, DatasetSongs, songRequired, parseSong)
}

// ReadActivity reads every activity event from src.
func ReadActivity(ctx context.Context, src RawSource) ([]ActivityRecord, ReadStats, error) {
	return readRecords(ctx, src, DatasetActivity, activityRequired, parseActivity)
}

func parseSong(r gjson.Result) SongRecord {
	return SongRecord{
		SongID:          str(r, "song_id"),
		Title:           str(r, "title"),
		ArtistID:        str(r, "artist_id"),
		ArtistName:      str(r, "artist_name"),
		ArtistLocation:  str(r, "artist_location"),
		ArtistLatitude:  optFloat(r, "artist_latitude"),
		ArtistLongitude: optFloat(r, "artist_longitude"),
		Year:            int(integer(r, "year")),
		Duration:        num(r, "duration"),
		DurationExact:   exact(r, "duration"),
	}
}

func parseActivity(r gjson.Result) ActivityRecord {
	ts, hasTS := optInteger(r, "ts")
	return ActivityRecord{
		UserID:      str(r, "userId"),
		FirstName:   str(r, "firstName"),
		LastName:    str(r, "lastName"),
		Gender:      str(r, "gender"),
		Level:       str(r, "level"),
		Page:        str(r, "page"),
		Song:        str(r, "song"),
		Artist:      str(r, "artist"),
		Length:      optFloat(r, "length"),
		LengthExact: exact(r, "length"),
		SessionID:   integer(r, "sessionId"),
		Location:    str(r, "location"),
		UserAgent:   str(r, "userAgent"),
		TS:          ts,
		HasTS:       hasTS,
	}
}

// readRecords splits every object of src into newline delimited JSON records
// and parses each one. Lines which aren't a JSON object are counted and
// skipped.
func readRecords[T any](ctx context.Context, src RawSource, dataset string, required []string, parse func(gjson.Result) T) ([]T, ReadStats, error) {
	stats := ReadStats{Dataset: dataset}
	present := make(map[string]bool, len(required))
	recs := make([]T, 0)
	for {
		if err := ctx.Err(); err != nil {
			return nil, stats, ingestErr(dataset, err, "reading")
		}
		reader, err := src.NextReader(ctx)
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, stats, ingestErr(dataset, err, "getting next object")
		}
		stats.Objects++
		err = eachLine(reader, func(line []byte) {
			if !gjson.ValidBytes(line) {
				stats.Malformed++
				return
			}
			r := gjson.ParseBytes(line)
			if !r.IsObject() {
				stats.Malformed++
				return
			}
			for _, f := range required {
				if !present[f] && r.Get(f).Exists() {
					present[f] = true
				}
			}
			recs = append(recs, parse(r))
		})
		closeErr := reader.Close()
		if err != nil {
			return nil, stats, ingestErr(dataset, err, "reading %s", reader.Name())
		}
		if closeErr != nil {
			return nil, stats, ingestErr(dataset, closeErr, "closing %s", reader.Name())
		}
	}
	stats.Records = len(recs)

	if stats.Objects == 0 {
		return nil, stats, ingestErr(dataset, nil, "no objects found")
	}
	if len(recs) == 0 {
		return nil, stats, ingestErr(dataset, nil, "no parsable records in %d objects", stats.Objects)
	}
	missing := make([]string, 0)
	for _, f := range required {
		if !present[f] {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, stats, &SchemaError{Dataset: dataset, Fields: missing}
	}
	return recs, stats, nil
}

func eachLine(r io.Reader, fn func(line []byte)) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			fn(bytes.TrimSpace(line))
		}
		if err == io.EOF {
			return nil
		} else if err != nil {
			return errors.Wrap(err, "reading line")
		}
	}
}

// str returns the value at key as a string. Numbers keep their literal form,
// so a numeric userId of 39 reads as "39". Null, missing and non-scalar values
// read as "".
func str(r gjson.Result, key string) string {
	v := r.Get(key)
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		return v.Raw
	default:
		return ""
	}
}

func optFloat(r gjson.Result, key string) *float64 {
	v := r.Get(key)
	switch v.Type {
	case gjson.Number:
		f := v.Float()
		return &f
	case gjson.String:
		f, err := strconv.ParseFloat(v.Str, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

func num(r gjson.Result, key string) float64 {
	if f := optFloat(r, key); f != nil {
		return *f
	}
	return 0
}

// exact returns the number at key in its exact decimal form (see
// exactDecimal), working from the literal text rather than a float64.
func exact(r gjson.Result, key string) string {
	v := r.Get(key)
	var text string
	switch v.Type {
	case gjson.Number:
		text = v.Raw
	case gjson.String:
		text = v.Str
	default:
		return ""
	}
	d, _ := exactDecimal(text)
	return d
}

func integer(r gjson.Result, key string) int64 {
	i, _ := optInteger(r, key)
	return i
}

// optInteger reports false for a null, missing or non-integer value.
func optInteger(r gjson.Result, key string) (int64, bool) {
	v := r.Get(key)
	switch v.Type {
	case gjson.Number:
		return v.Int(), true
	case gjson.String:
		i, err := strconv.ParseInt(v.Str, 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

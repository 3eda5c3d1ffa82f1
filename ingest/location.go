package ingest

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// location is a dataset or destination root: a local directory, or a prefix
// within an S3 bucket.
type location struct {
	bucket string // empty for local paths
	path   string
}

func (l location) isS3() bool { return l.bucket != "" }

// sub returns the location of name below l.
func (l location) sub(name string) location {
	if l.isS3() {
		return location{bucket: l.bucket, path: strings.TrimPrefix(path.Join(l.path, name), "/")}
	}
	return location{path: filepath.Join(l.path, name)}
}

func (l location) String() string {
	if l.isS3() {
		return "s3://" + l.bucket + "/" + l.path
	}
	return l.path
}

// parseLocation accepts "s3://bucket/prefix", "s3a://bucket/prefix" or a
// local path.
func parseLocation(s string) (location, error) {
	if s == "" {
		return location{}, errors.New("empty location")
	}
	if !strings.Contains(s, "://") {
		return location{path: filepath.Clean(s)}, nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return location{}, errors.Wrapf(err, "parsing %s", s)
	}
	switch u.Scheme {
	case "s3", "s3a":
		if u.Host == "" {
			return location{}, errors.Errorf("no bucket in %s", s)
		}
		return location{bucket: u.Host, path: strings.Trim(u.Path, "/")}, nil
	case "file":
		return location{path: filepath.Clean(u.Path)}, nil
	default:
		return location{}, errors.Errorf("unsupported scheme %q in %s", u.Scheme, s)
	}
}

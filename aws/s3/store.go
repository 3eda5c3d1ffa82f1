// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

package s3

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/pkg/errors"
)

// maxDeleteKeys is the most keys a single DeleteObjects request accepts.
const maxDeleteKeys = 1000

// Store is a starschema.Store writing objects below a prefix of a bucket.
type Store struct {
	bucket string
	prefix string

	s3       s3iface.S3API
	uploader s3manageriface.UploaderAPI
}

// NewStore returns a Store for bucket and prefix. Objects are uploaded
// through uploader, and listed and deleted through svc.
func NewStore(svc s3iface.S3API, uploader s3manageriface.UploaderAPI, bucket, prefix string) *Store {
	return &Store{
		bucket:   bucket,
		prefix:   prefix,
		s3:       svc,
		uploader: uploader,
	}
}

// NewStoreFromClient returns a Store using an s3manager.Uploader built on
// svc.
func NewStoreFromClient(svc s3iface.S3API, bucket, prefix string) *Store {
	return NewStore(svc, s3manager.NewUploaderWithClient(svc), bucket, prefix)
}

// upload streams everything written to it into a single object. The object
// exists once Close returns nil.
type upload struct {
	pw   *io.PipeWriter
	done chan error
}

func (u *upload) Write(p []byte) (int, error) {
	return u.pw.Write(p)
}

func (u *upload) Close() error {
	if err := u.pw.Close(); err != nil {
		return errors.Wrap(err, "closing pipe")
	}
	return <-u.done
}

// Create implements starschema.Store.
func (s *Store) Create(ctx context.Context, p string) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := join(s.prefix, p)
	pr, pw := io.Pipe()
	u := &upload{pw: pw, done: make(chan error, 1)}
	go func() {
		_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
			Body:   pr,
		})
		// unblock the writer if the upload gave up early
		pr.CloseWithError(err)
		u.done <- errors.Wrapf(err, "uploading %s", key)
	}()
	return u, nil
}

// RemoveAll implements starschema.Store.
func (s *Store) RemoveAll(ctx context.Context, prefix string) error {
	keys, err := listKeys(ctx, s.s3, s.bucket, dirPrefix(join(s.prefix, prefix)))
	if err != nil {
		return errors.Wrap(err, "listing objects")
	}
	for start := 0; start < len(keys); start += maxDeleteKeys {
		end := start + maxDeleteKeys
		if end > len(keys) {
			end = len(keys)
		}
		objs := make([]*s3.ObjectIdentifier, 0, end-start)
		for _, k := range keys[start:end] {
			objs = append(objs, &s3.ObjectIdentifier{Key: aws.String(k)})
		}
		out, err := s.s3.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &s3.Delete{Objects: objs, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return errors.Wrap(err, "deleting objects")
		}
		if len(out.Errors) > 0 {
			e := out.Errors[0]
			return errors.Errorf("deleting %s: %s", aws.StringValue(e.Key), aws.StringValue(e.Message))
		}
	}
	return nil
}

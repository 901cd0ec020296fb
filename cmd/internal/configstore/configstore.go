// Package configstore mirrors the organization configuration directory to
// and from its S3 bucket. The bucket is the operator-side copy of the same
// documents the pipeline sources from the configuration repository.
package configstore

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/errors"
)

// api is the slice of the S3 client the store needs.
type api interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type Store struct {
	client api
	bucket string
	prefix string
}

// New creates a store over bucket. A non-empty prefix scopes every object
// key and gains a trailing slash when it lacks one.
func New(client api, bucket, prefix string) *Store {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Store{client: client, bucket: bucket, prefix: prefix}
}

// Push uploads every configuration document and referenced artifact under
// dir, returning the uploaded object keys in walk order. Only YAML and JSON
// files sync; everything else in the directory stays local.
func (s *Store) Push(ctx context.Context, dir string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !syncable(path) {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		key := s.prefix + filepath.ToSlash(rel)

		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "opening %s", rel)
		}
		defer f.Close()

		if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
			Body:   f,
		}); err != nil {
			return errors.Wrapf(err, "uploading %s", rel)
		}

		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Pull downloads every object under the store's prefix into dir, creating
// directories as needed. Keys that would escape dir are skipped. Returns the
// written paths relative to dir, sorted.
func (s *Store) Pull(ctx context.Context, dir string) ([]string, error) {
	var written []string
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(s.prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "listing s3://%s/%s", s.bucket, s.prefix)
		}

		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			rel := filepath.FromSlash(strings.TrimPrefix(key, s.prefix))
			if rel == "" || strings.HasSuffix(key, "/") || !filepath.IsLocal(rel) {
				continue
			}
			if err := s.download(ctx, key, dir, rel); err != nil {
				return nil, err
			}
			written = append(written, rel)
		}

		if !aws.ToBool(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}

	sort.Strings(written)
	return written, nil
}

func (s *Store) download(ctx context.Context, key, dir, rel string) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errors.Wrapf(err, "downloading s3://%s/%s", s.bucket, key)
	}
	defer out.Body.Close()

	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating directory for %s", rel)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", rel)
	}
	if _, err := io.Copy(f, out.Body); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", rel)
	}
	return f.Close()
}

func syncable(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// Package catalog loads the product catalog document used to ground AI
// answers and keeps its extracted text in memory.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var (
	ErrDocumentNotFound = errors.New("catalog: document not found")
	ErrEmptyDocument    = errors.New("catalog: document has no extractable text")
)

// Source fetches raw catalog documents by name.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// S3API is the subset of the S3 client used by S3Source.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads documents from a bucket, optionally under a key prefix.
type S3Source struct {
	client S3API
	bucket string
	prefix string
}

func NewS3Source(client S3API, bucket, prefix string) *S3Source {
	if client == nil {
		panic("catalog: S3 client cannot be nil")
	}
	if strings.TrimSpace(bucket) == "" {
		panic("catalog: bucket cannot be empty")
	}
	return &S3Source{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (s *S3Source) Fetch(ctx context.Context, name string) ([]byte, error) {
	key := name
	if s.prefix != "" {
		key = path.Join(s.prefix, name)
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrDocumentNotFound, s.bucket, key)
		}
		return nil, fmt.Errorf("catalog: s3 get %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("catalog: read s3 object %s: %w", key, err)
	}
	return data, nil
}

// FileSource reads documents from a local directory.
type FileSource struct {
	dir string
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

func (s *FileSource) Fetch(_ context.Context, name string) ([]byte, error) {
	// only plain file names are served from the directory
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, name)
		}
		return nil, fmt.Errorf("catalog: read file %s: %w", name, err)
	}
	return data, nil
}

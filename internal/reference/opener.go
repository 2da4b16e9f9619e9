package reference

// opener.go resolves reference table locations to readers.
//
// Locations of the form s3://bucket/key are fetched from S3; anything else is
// a local path. Every reader is wrapped so a leading UTF-8 BOM is dropped and
// invalid UTF-8 is replaced with U+FFFD before parsing.

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Opener opens a reference table by location.
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// SourceOpener opens local files and s3:// objects.
// The S3 client is created on first use so file-only setups never need AWS credentials.
type SourceOpener struct {
	region string

	once   sync.Once
	client s3iface.S3API
	err    error
}

// NewSourceOpener creates an opener that uses region for S3 requests.
func NewSourceOpener(region string) *SourceOpener {
	return &SourceOpener{region: region}
}

// newS3Opener creates an opener with a preconfigured S3 client.
func newS3Opener(client s3iface.S3API) *SourceOpener {
	return &SourceOpener{client: client}
}

// Open implements Opener.
func (o *SourceOpener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if strings.HasPrefix(location, "s3://") {
		rc, err := o.openS3(ctx, location)
		if err != nil {
			return nil, err
		}
		return sanitize(rc), nil
	}

	f, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("open reference %s: %w", location, err)
	}
	return sanitize(f), nil
}

func (o *SourceOpener) openS3(ctx context.Context, location string) (io.ReadCloser, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("parse reference location %s: %w", location, err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return nil, fmt.Errorf("reference location %s: want s3://bucket/key", location)
	}

	o.once.Do(func() {
		if o.client != nil {
			return
		}
		var sess *session.Session
		sess, o.err = session.NewSession(&aws.Config{Region: aws.String(o.region)})
		if o.err == nil {
			o.client = s3.New(sess)
		}
	})
	if o.err != nil {
		return nil, fmt.Errorf("create s3 session: %w", o.err)
	}

	out, err := o.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.Host),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get reference %s: %w", location, err)
	}
	return out.Body, nil
}

type sanitizedReader struct {
	io.Reader
	closer io.Closer
}

func (r *sanitizedReader) Close() error { return r.closer.Close() }

// sanitize strips a UTF-8 BOM and replaces invalid byte sequences.
func sanitize(rc io.ReadCloser) io.ReadCloser {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	return &sanitizedReader{
		Reader: transform.NewReader(rc, dec),
		closer: rc,
	}
}

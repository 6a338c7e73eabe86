package stations

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/pegelboard/internal/errors"
)

// ObjectGetter is the part of the S3 client S3Source needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads a JSON snapshot of all stations of a water from an S3
// object. The key template may contain {WATER}. Id filters are applied to
// the snapshot locally.
type S3Source struct {
	client ObjectGetter
	bucket string
	key    string
	cfg    sourceConfig
}

// NewS3Source returns a source reading bucket/key through client.
func NewS3Source(client ObjectGetter, bucket, key string, opts ...Option) *S3Source {
	return &S3Source{client: client, bucket: bucket, key: key, cfg: newSourceConfig(opts)}
}

// S3ClientOptions configures NewS3Client.
type S3ClientOptions struct {
	Region   string
	Endpoint string
	// AccessKey and SecretKey select static credentials. When both are
	// empty the client signs requests anonymously, which is enough for
	// public snapshot buckets.
	AccessKey string
	SecretKey string
	PathStyle bool
}

// NewS3Client builds an S3 client without consulting the shared AWS
// configuration files.
func NewS3Client(o S3ClientOptions) *s3.Client {
	region := o.Region
	if region == "" {
		region = "eu-central-1"
	}
	opts := s3.Options{
		Region:       region,
		UsePathStyle: o.PathStyle,
		Credentials:  aws.AnonymousCredentials{},
	}
	if o.AccessKey != "" || o.SecretKey != "" {
		opts.Credentials = aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     o.AccessKey,
				SecretAccessKey: o.SecretKey,
				Source:          "pegel config",
			}, nil
		})
	}
	if o.Endpoint != "" {
		opts.BaseEndpoint = aws.String(o.Endpoint)
	}
	return s3.New(opts)
}

// ParseS3URL splits s3://bucket/key into its parts.
func ParseS3URL(raw string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(raw, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 url: %q", raw)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 url needs bucket and key: %q", raw)
	}
	return bucket, key, nil
}

// ObjectKey expands the key template for water.
func (s *S3Source) ObjectKey(water string) string {
	return strings.ReplaceAll(s.key, PlaceholderWater, water)
}

// Fetch implements Source.
func (s *S3Source) Fetch(ctx context.Context, water string, ids []string) ([]Station, error) {
	return s.cfg.observe(ctx, "s3", water, ids, func(ctx context.Context) ([]Station, error) {
		key := s.ObjectKey(water)
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return nil, errors.New("P140").WithDetail("s3://" + s.bucket + "/" + key).Wrap(err)
		}
		defer out.Body.Close()

		body, err := io.ReadAll(out.Body)
		if err != nil {
			return nil, errors.New("P140").Wrap(err)
		}
		all, err := Decode(body)
		if err != nil {
			return nil, errors.New("P141").Wrap(err)
		}
		return filterIDs(all, ids), nil
	})
}

func filterIDs(all []Station, ids []string) []Station {
	if len(ids) == 0 {
		return all
	}
	var out []Station
	for _, st := range all {
		for _, id := range ids {
			if st.Matches(id) {
				out = append(out, st)
				break
			}
		}
	}
	return out
}

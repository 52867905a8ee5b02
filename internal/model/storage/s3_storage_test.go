package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	objects map[string][]byte
	getErr  error
	puts    int
	ctype   string
}

func (f *fakeObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	raw, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(raw))}, nil
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	raw, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = raw
	f.puts++
	f.ctype = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

type s3TestConfig struct {
	uri     string
	staging string
}

func (c s3TestConfig) URI() string      { return c.uri }
func (c s3TestConfig) Region() string   { return "" }
func (c s3TestConfig) Endpoint() string { return "" }
func (c s3TestConfig) Staging() string  { return c.staging }

func Test_OnParseURI(t *testing.T) {
	bucket, key, err := ParseURI("s3://rates-bucket/daily/exchange-rates.csv")
	require.NoError(t, err)
	assert.Equal(t, "rates-bucket", bucket)
	assert.Equal(t, "daily/exchange-rates.csv", key)

	for _, bad := range []string{"", "rates-bucket/file.csv", "https://rates-bucket/file.csv", "s3://rates-bucket", "s3://rates-bucket/dir/", "s3:///file.csv"} {
		_, _, err = ParseURI(bad)
		assert.ErrorIs(t, err, ErrBadS3URI, bad)
	}
}

func Test_OnMissingObject_ShouldLoadEmptySeries(t *testing.T) {
	s, err := NewS3Storage(&fakeObjects{}, s3TestConfig{uri: "s3://bucket/exchange-rates.csv", staging: t.TempDir()})
	require.NoError(t, err)

	res, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Len())
}

func Test_OnNotFoundAPIError_ShouldLoadEmptySeries(t *testing.T) {
	objects := &fakeObjects{getErr: &smithy.GenericAPIError{Code: "NotFound"}}
	s, err := NewS3Storage(objects, s3TestConfig{uri: "s3://bucket/exchange-rates.csv", staging: t.TempDir()})
	require.NoError(t, err)

	res, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Len())
}

func Test_OnAccessDenied_ShouldFailLoad(t *testing.T) {
	objects := &fakeObjects{getErr: &smithy.GenericAPIError{Code: "AccessDenied"}}
	s, err := NewS3Storage(objects, s3TestConfig{uri: "s3://bucket/exchange-rates.csv", staging: t.TempDir()})
	require.NoError(t, err)

	_, err = s.Load(context.Background())
	assert.Error(t, err)
}

func Test_OnS3SaveThenLoad_ShouldRoundTripThroughObject(t *testing.T) {
	objects := &fakeObjects{}
	ctx := context.Background()
	s, err := NewS3Storage(objects, s3TestConfig{uri: "s3://bucket/data/exchange-rates.csv", staging: t.TempDir()})
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, sampleSeries(t)))
	assert.Equal(t, 1, objects.puts)
	assert.Equal(t, "text/csv", objects.ctype)
	assert.Equal(t, "date,EUR,JPY\n2024-01-01,0.91,\n2024-01-02,0.92,141.2\n",
		string(objects.objects["bucket/data/exchange-rates.csv"]))

	res, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, res.Dates())
}

func Test_OnClose_ShouldRemoveOwnedStagingDir(t *testing.T) {
	s, err := NewS3Storage(&fakeObjects{}, s3TestConfig{uri: "s3://bucket/exchange-rates.csv"})
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), sampleSeries(t)))

	require.NoError(t, s.Close())
	_, err = os.Stat(s.stagingDir)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func Test_OnClose_ShouldKeepConfiguredStagingDir(t *testing.T) {
	dir := t.TempDir()
	s, err := NewS3Storage(&fakeObjects{}, s3TestConfig{uri: "s3://bucket/exchange-rates.csv", staging: dir})
	require.NoError(t, err)

	require.NoError(t, s.Close())
	_, err = os.Stat(dir)
	assert.NoError(t, err)
}

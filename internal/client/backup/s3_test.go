package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
	putErr  error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Bucket+"/"+*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func withFakeS3(t *testing.T, fake *fakeS3, loadErr error) *s3.Options {
	t.Helper()
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig = origLoad, origNew
	})

	var opts s3.Options
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		if loadErr != nil {
			return aws.Config{}, loadErr
		}
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		return aws.Config{Region: lo.Region}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		for _, fn := range optFns {
			fn(&opts)
		}
		return fake
	}
	return &opts
}

func TestS3Store_PutGet(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	opts := withFakeS3(t, fake, nil)

	store, err := NewS3Store(context.Background(), S3Config{
		Bucket:    "didkeeper",
		Region:    "us-east-1",
		Endpoint:  "http://127.0.0.1:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	})
	require.NoError(t, err)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)

	key := ObjectKey(testDID)
	assert.Equal(t, "backups/"+testDID+".enc", key)

	require.NoError(t, store.Put(context.Background(), key, []byte("sealed")))
	assert.Equal(t, []byte("sealed"), fake.objects["didkeeper/"+key])

	got, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, []byte("sealed"), got)

	_, err = store.Get(context.Background(), ObjectKey("did:prism:other"))
	assert.ErrorIs(t, err, ErrRemoteNotFound)
}

func TestS3Store_NoEndpointKeepsVirtualHosting(t *testing.T) {
	opts := withFakeS3(t, &fakeS3{objects: map[string][]byte{}}, nil)

	_, err := NewS3Store(context.Background(), S3Config{Bucket: "b", Region: "eu-west-1"})
	require.NoError(t, err)
	assert.Nil(t, opts.BaseEndpoint)
	assert.False(t, opts.UsePathStyle)
}

func TestS3Store_Errors(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Config{})
	assert.Error(t, err)

	withFakeS3(t, nil, errors.New("load-fail"))
	_, err = NewS3Store(context.Background(), S3Config{Bucket: "b"})
	assert.ErrorContains(t, err, "load-fail")
}

func TestS3Store_PutError(t *testing.T) {
	withFakeS3(t, &fakeS3{putErr: errors.New("denied")}, nil)

	store, err := NewS3Store(context.Background(), S3Config{Bucket: "b"})
	require.NoError(t, err)
	assert.ErrorContains(t, store.Put(context.Background(), "k", nil), "denied")
}

package poststore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.GetObjectOutput)
	return out, args.Error(1)
}

func (m *mockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func (m *mockS3) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.HeadObjectOutput)
	return out, args.Error(1)
}

func (m *mockS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.DeleteObjectOutput)
	return out, args.Error(1)
}

func (m *mockS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.ListObjectsV2Output)
	return out, args.Error(1)
}

func objectKeyIs(key string) any {
	return mock.MatchedBy(func(in any) bool {
		switch v := in.(type) {
		case *s3.GetObjectInput:
			return aws.ToString(v.Key) == key && aws.ToString(v.Bucket) == "blog"
		case *s3.PutObjectInput:
			return aws.ToString(v.Key) == key && aws.ToString(v.Bucket) == "blog"
		case *s3.HeadObjectInput:
			return aws.ToString(v.Key) == key && aws.ToString(v.Bucket) == "blog"
		case *s3.DeleteObjectInput:
			return aws.ToString(v.Key) == key && aws.ToString(v.Bucket) == "blog"
		}
		return false
	})
}

func TestS3Bucket_Get(t *testing.T) {
	ctx := context.Background()
	client := new(mockS3)
	b := newS3Bucket(client, "blog", "posts/")

	client.On("GetObject", ctx, objectKeyIs("posts/hello.json")).Return(&s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(`{"title":"Hello"}`)),
	}, nil)
	client.On("GetObject", ctx, objectKeyIs("posts/missing.json")).Return(nil, &types.NoSuchKey{})
	client.On("GetObject", ctx, objectKeyIs("posts/broken.json")).Return(nil, errors.New("connection reset"))

	data, err := b.Get(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Hello"}`, string(data))

	_, err = b.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = b.Get(ctx, "broken")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	client.AssertExpectations(t)
}

func TestS3Bucket_RejectsPathKeys(t *testing.T) {
	ctx := context.Background()
	client := new(mockS3)
	b := newS3Bucket(client, "blog", "posts/")

	for _, key := range []string{"", "../escape", "nested/key", ".hidden"} {
		_, err := b.Get(ctx, key)
		assert.ErrorIs(t, err, ErrNotFound, key)
		assert.ErrorIs(t, b.Delete(ctx, key), ErrNotFound, key)
		assert.Error(t, b.Put(ctx, key, []byte("{}")), key)
	}

	client.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "HeadObject", mock.Anything, mock.Anything)
}

func TestS3Bucket_Put(t *testing.T) {
	ctx := context.Background()
	client := new(mockS3)
	b := newS3Bucket(client, "blog", "posts/")

	client.On("PutObject", ctx, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		if seeker, ok := in.Body.(io.Seeker); ok {
			_, _ = seeker.Seek(0, io.SeekStart)
		}
		body, _ := io.ReadAll(in.Body)
		return aws.ToString(in.Key) == "posts/hello.json" &&
			aws.ToString(in.ContentType) == "application/json" &&
			string(body) == `{"title":"Hello"}`
	})).Return(&s3.PutObjectOutput{}, nil)

	require.NoError(t, b.Put(ctx, "hello", []byte(`{"title":"Hello"}`)))
	client.AssertExpectations(t)
}

func TestS3Bucket_Delete(t *testing.T) {
	ctx := context.Background()
	client := new(mockS3)
	b := newS3Bucket(client, "blog", "posts/")

	client.On("HeadObject", ctx, objectKeyIs("posts/hello.json")).Return(&s3.HeadObjectOutput{}, nil)
	client.On("DeleteObject", ctx, objectKeyIs("posts/hello.json")).Return(&s3.DeleteObjectOutput{}, nil)
	client.On("HeadObject", ctx, objectKeyIs("posts/missing.json")).Return(nil, &types.NotFound{})

	require.NoError(t, b.Delete(ctx, "hello"))
	assert.ErrorIs(t, b.Delete(ctx, "missing"), ErrNotFound)

	client.AssertExpectations(t)
	client.AssertNotCalled(t, "DeleteObject", ctx, objectKeyIs("posts/missing.json"))
}

func TestS3Bucket_KeysPaginates(t *testing.T) {
	ctx := context.Background()
	client := new(mockS3)
	b := newS3Bucket(client, "blog", "posts/")

	client.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return in.ContinuationToken == nil && aws.ToString(in.Prefix) == "posts/"
	})).Return(&s3.ListObjectsV2Output{
		Contents: []types.Object{
			{Key: aws.String("posts/a.json")},
			{Key: aws.String("posts/readme.txt")},
			{Key: aws.String("posts/nested/b.json")},
		},
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("page-2"),
	}, nil).Once()

	client.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return aws.ToString(in.ContinuationToken) == "page-2"
	})).Return(&s3.ListObjectsV2Output{
		Contents:    []types.Object{{Key: aws.String("posts/c.json")}},
		IsTruncated: aws.Bool(false),
	}, nil).Once()

	keys, err := b.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, keys)

	client.AssertExpectations(t)
}

func TestS3Bucket_StoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := new(mockS3)
	b := newS3Bucket(client, "blog", "posts/")
	s := New(b, JSONCodec{}, Options{Consistency: Strong})

	var stored []byte
	client.On("PutObject", ctx, objectKeyIs("posts/hello-world.json")).Run(func(args mock.Arguments) {
		in := args.Get(1).(*s3.PutObjectInput)
		stored, _ = io.ReadAll(in.Body)
	}).Return(&s3.PutObjectOutput{}, nil)

	p := testPost()
	require.NoError(t, s.Set(ctx, p.Slug, p))

	client.On("GetObject", ctx, objectKeyIs("posts/hello-world.json")).Return(&s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(string(stored))),
	}, nil)

	got, err := s.Get(ctx, p.Slug)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

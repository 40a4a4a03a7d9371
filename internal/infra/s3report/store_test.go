package s3report

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestUpload(t *testing.T) {
	fake := &fakeS3{}
	store := NewWithClient(fake, "reports")

	err := store.Upload(context.Background(), "reconciliation/a.csv", []byte("id\n1\n"), "text/csv")
	require.NoError(t, err)

	assert.Equal(t, "reports", aws.ToString(fake.in.Bucket))
	assert.Equal(t, "reconciliation/a.csv", aws.ToString(fake.in.Key))
	assert.Equal(t, "text/csv", aws.ToString(fake.in.ContentType))
	assert.Equal(t, "id\n1\n", string(fake.body))
}

func TestUploadWrapsError(t *testing.T) {
	store := NewWithClient(&fakeS3{err: errors.New("denied")}, "reports")

	err := store.Upload(context.Background(), "k", nil, "text/csv")
	assert.ErrorContains(t, err, "reports/k")
}

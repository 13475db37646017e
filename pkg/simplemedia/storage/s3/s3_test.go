package s3

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3Backend_BasicConfiguration(t *testing.T) {
	t.Run("EmptyBucket", func(t *testing.T) {
		_, err := New(Config{Region: "us-east-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket name is required")
	})

	t.Run("StaticCredentials", func(t *testing.T) {
		backend, err := New(Config{
			Bucket:          "media",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
			Endpoint:        "http://localhost:9000",
			UsePathStyle:    true,
		})
		require.NoError(t, err)

		b := backend.(*Backend)
		assert.Equal(t, "media", b.bucket)
		assert.Equal(t, "us-east-1", b.config.Region)
	})
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&types.NoSuchKey{}))
	assert.True(t, isNotFound(fmt.Errorf("wrapped: %w", &types.NotFound{})))
	assert.True(t, isNotFound(&smithy.GenericAPIError{Code: "NoSuchKey"}))
	assert.False(t, isNotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isNotFound(errors.New("connection refused")))
}

func TestPutInput_ServerSideEncryption(t *testing.T) {
	b := &Backend{bucket: "media", config: Config{EnableSSE: true, SSEAlgorithm: "aws:kms", SSEKMSKeyID: "key-1"}}

	input := b.putInput("local_content/ab/cd/ef", strings.NewReader("x"), "image/png")

	assert.Equal(t, "media", *input.Bucket)
	assert.Equal(t, "image/png", *input.ContentType)
	assert.Equal(t, types.ServerSideEncryptionAwsKms, input.ServerSideEncryption)
	assert.Equal(t, "key-1", *input.SSEKMSKeyId)

	plain := (&Backend{bucket: "media"}).putInput("k", strings.NewReader("x"), "")
	assert.Nil(t, plain.ContentType)
	assert.Empty(t, plain.ServerSideEncryption)
}

package catalog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"storefront/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockObjectGetter is a mock implementation of ObjectGetter.
type MockObjectGetter struct {
	mock.Mock
}

func (m *MockObjectGetter) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func objectInput(bucket, key string) any {
	return mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Bucket) == bucket && aws.ToString(in.Key) == key
	})
}

func TestS3Loader_Load(t *testing.T) {
	tests := []struct {
		name         string
		output       *s3.GetObjectOutput
		getErr       error
		expectCount  int
		expectErrStr string
	}{
		{
			name:        "Success",
			output:      &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(gzipBytes(t, sampleCatalogue)))},
			expectCount: 2,
		},
		{
			name:         "GetObject fails",
			getErr:       errors.New("access denied"),
			expectErrStr: "failed to get object from S3 (bucket=shop, key=catalog/catalog.jsonl.gz)",
		},
		{
			name:         "Object is not gzipped",
			output:       &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte("plain")))},
			expectErrStr: "gzip",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockObjectGetter)
			if tt.output != nil {
				client.On("GetObject", mock.Anything, objectInput("shop", "catalog/catalog.jsonl.gz")).Return(tt.output, nil)
			} else {
				client.On("GetObject", mock.Anything, objectInput("shop", "catalog/catalog.jsonl.gz")).Return(nil, tt.getErr)
			}
			loader := NewS3LoaderWithClient(client, "shop", zerolog.Nop())

			products, err := loader.Load(context.Background(), "catalog/catalog.jsonl.gz")

			if tt.expectErrStr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectErrStr)
				assert.Nil(t, products)
			} else {
				require.NoError(t, err)
				assert.Len(t, products, tt.expectCount)
			}
			client.AssertExpectations(t)
		})
	}
}

// mockLoader is a mock implementation of the Loader interface for testing.
type mockLoader struct {
	loadFunc func(ctx context.Context, path string) ([]model.Product, error)
}

func (m *mockLoader) Load(ctx context.Context, path string) ([]model.Product, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx, path)
	}
	return nil, errors.New("not implemented")
}

func TestFallbackLoader(t *testing.T) {
	fromS3 := []model.Product{{ID: "S3"}}
	fromDisk := []model.Product{{ID: "DISK"}}

	tests := []struct {
		name        string
		s3          Loader
		disk        *mockLoader
		expectID    string
		expectError string
	}{
		{
			name: "S3 succeeds",
			s3: &mockLoader{loadFunc: func(_ context.Context, key string) ([]model.Product, error) {
				assert.Equal(t, "catalog/catalog.jsonl.gz", key)
				return fromS3, nil
			}},
			disk: &mockLoader{loadFunc: func(context.Context, string) ([]model.Product, error) {
				t.Error("file loader should not be called when S3 succeeds")
				return nil, errors.New("should not be called")
			}},
			expectID: "S3",
		},
		{
			name: "S3 fails, falls back to local",
			s3: &mockLoader{loadFunc: func(context.Context, string) ([]model.Product, error) {
				return nil, errors.New("S3 connection failed")
			}},
			disk: &mockLoader{loadFunc: func(_ context.Context, path string) ([]model.Product, error) {
				assert.Equal(t, "data/catalog/catalog.jsonl.gz", path)
				return fromDisk, nil
			}},
			expectID: "DISK",
		},
		{
			name: "No S3 loader",
			s3:   nil,
			disk: &mockLoader{loadFunc: func(context.Context, string) ([]model.Product, error) {
				return fromDisk, nil
			}},
			expectID: "DISK",
		},
		{
			name: "Both fail",
			s3: &mockLoader{loadFunc: func(context.Context, string) ([]model.Product, error) {
				return nil, errors.New("S3 error")
			}},
			disk: &mockLoader{loadFunc: func(context.Context, string) ([]model.Product, error) {
				return nil, errors.New("file not found")
			}},
			expectError: "file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewFallbackLoader(tt.s3, tt.disk, "catalog/", zerolog.Nop())

			products, err := loader.Load(context.Background(), "data/catalog/catalog.jsonl.gz")

			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}
			require.NoError(t, err)
			require.Len(t, products, 1)
			assert.Equal(t, tt.expectID, products[0].ID)
		})
	}
}

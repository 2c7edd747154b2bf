package repository

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockS3Client はテスト用のモッククライアントです
type MockS3Client struct {
	objects map[string]string
	err     error
}

func (m *MockS3Client) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	b, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	if m.objects == nil {
		m.objects = make(map[string]string)
	}
	m.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)] = string(b)
	return &s3.PutObjectOutput{}, nil
}

func TestLogArchiver_Archive(t *testing.T) {
	ctx, seg := xray.BeginSegment(context.Background(), "TestLogArchiver_Archive")
	defer seg.Close(nil)

	dir := t.TempDir()
	reservations := filepath.Join(dir, "reservas.json")
	require.NoError(t, os.WriteFile(reservations, []byte(`[{"id": 1}]`), 0o644))
	missing := filepath.Join(dir, "pagos.json")

	client := &MockS3Client{}
	archiver := NewLogArchiver(client, "hotel-logs")

	keys, err := archiver.Archive(ctx, "run-1", reservations, missing)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1/reservas.json"}, keys)
	assert.Equal(t, `[{"id": 1}]`, client.objects["hotel-logs/run-1/reservas.json"])
}

func TestLogArchiver_ArchiveError(t *testing.T) {
	ctx, seg := xray.BeginSegment(context.Background(), "TestLogArchiver_ArchiveError")
	defer seg.Close(nil)

	p := filepath.Join(t.TempDir(), "reservas.json")
	require.NoError(t, os.WriteFile(p, []byte(`[]`), 0o644))

	archiver := NewLogArchiver(&MockS3Client{err: errors.New("access denied")}, "hotel-logs")
	keys, err := archiver.Archive(ctx, "run-1", p)
	assert.Error(t, err)
	assert.Empty(t, keys)
}

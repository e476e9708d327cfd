package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pribylovaa/school-site/internal/config"
	"github.com/pribylovaa/school-site/internal/storage"
)

// Интеграционные тесты против настоящего контейнера MinIO.
//
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/minio -v -race -count=1

const (
	rootUser     = "root"
	rootPassword = "rootpass"
	bucket       = "school-site"
)

func startMinio(t *testing.T) (cfg config.S3Config, admin *mclient.Client) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image: "docker.io/minio/minio:latest",
		Env: map[string]string{
			"MINIO_ROOT_USER":     rootUser,
			"MINIO_ROOT_PASSWORD": rootPassword,
		},
		Cmd:          []string{"server", "/data"},
		ExposedPorts: []string{"9000/tcp"},
		WaitingFor:   wait.ForListeningPort("9000/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "9000/tcp")

	admin, err = mclient.New(host+":"+port.Port(), &mclient.Options{
		Creds: credentials.NewStaticV4(rootUser, rootPassword, ""),
	})
	require.NoError(t, err)

	cfg = config.S3Config{
		Endpoint:     fmt.Sprintf("http://%s:%s", host, port.Port()),
		RootUser:     rootUser,
		RootPassword: rootPassword,
		Bucket:       bucket,
	}

	return cfg, admin
}

func TestIntegration_New_BucketMustExist(t *testing.T) {
	cfg, _ := startMinio(t)

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}

func TestIntegration_PutRemove(t *testing.T) {
	cfg, admin := startMinio(t)
	ctx := context.Background()
	require.NoError(t, admin.MakeBucket(ctx, bucket, mclient.MakeBucketOptions{Region: "us-east-1"}))

	cfg.PublicBaseURL = "https://cdn.example.org/media/"
	b, err := New(ctx, cfg)
	require.NoError(t, err)

	body := []byte("\x89PNG fake")
	obj, err := b.Put(ctx, "gallery", bytes.NewReader(body), int64(len(body)), "image/png")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(obj.Key, "gallery/"))
	require.True(t, strings.HasSuffix(obj.Key, ".png"))
	require.Equal(t, "https://cdn.example.org/media/"+obj.Key, obj.URL)

	got, err := admin.GetObject(ctx, bucket, obj.Key, mclient.GetObjectOptions{})
	require.NoError(t, err)
	data, err := io.ReadAll(got)
	require.NoError(t, err)
	require.Equal(t, body, data)

	info, err := admin.StatObject(ctx, bucket, obj.Key, mclient.StatObjectOptions{})
	require.NoError(t, err)
	require.Equal(t, "image/png", info.ContentType)

	require.NoError(t, b.Remove(ctx, obj.Key))
	require.NoError(t, b.Remove(ctx, obj.Key), "removing twice is fine")
	require.NoError(t, b.Remove(ctx, ""))

	_, err = admin.StatObject(ctx, bucket, obj.Key, mclient.StatObjectOptions{})
	require.Error(t, err)
}

func TestIntegration_Put_DefaultURLAndValidation(t *testing.T) {
	cfg, admin := startMinio(t)
	ctx := context.Background()
	require.NoError(t, admin.MakeBucket(ctx, bucket, mclient.MakeBucketOptions{Region: "us-east-1"}))

	b, err := New(ctx, cfg)
	require.NoError(t, err)

	obj, err := b.Put(ctx, "staff", strings.NewReader("x"), 1, "application/octet-stream")
	require.NoError(t, err)
	require.Equal(t, cfg.Endpoint+"/"+bucket+"/"+obj.Key, obj.URL)

	_, err = b.Put(ctx, "staff", strings.NewReader(""), 0, "image/png")
	require.ErrorIs(t, err, storage.ErrInvalidArgument)
}

func TestExtFor(t *testing.T) {
	t.Parallel()

	require.Equal(t, ".jpg", extFor("image/jpeg"))
	require.Equal(t, ".png", extFor("image/png"))
	require.Equal(t, ".webp", extFor("image/webp"))
	require.Equal(t, ".gif", extFor("image/gif"))
	require.Equal(t, "", extFor("text/plain"))
}

//go:build integration

// Package testutils provides shared test infrastructure for integration tests.
package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Object is a test object to seed into a bucket.
type Object struct {
	Bucket string
	Key    string
	Data   []byte
}

// GenerateTestData generates deterministic test data of the given size.
func GenerateTestData(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

// MinioEnv contains connection information for a Minio test environment.
type MinioEnv struct {
	Container testcontainers.Container
	Client    *minio.Client
	Endpoint  string // http://host:port
	AccessKey string
	SecretKey string
}

// Close terminates the Minio container.
func (e *MinioEnv) Close(ctx context.Context) error {
	if e.Container != nil {
		return e.Container.Terminate(ctx)
	}
	return nil
}

// Seed creates the buckets of objects as needed and uploads every object.
func (e *MinioEnv) Seed(t *testing.T, ctx context.Context, objects ...Object) {
	t.Helper()

	for _, obj := range objects {
		exists, err := e.Client.BucketExists(ctx, obj.Bucket)
		if err != nil {
			t.Fatalf("check bucket %s: %v", obj.Bucket, err)
		}
		if !exists {
			if err := e.Client.MakeBucket(ctx, obj.Bucket, minio.MakeBucketOptions{Region: "us-east-1"}); err != nil {
				t.Fatalf("make bucket %s: %v", obj.Bucket, err)
			}
		}

		_, err = e.Client.PutObject(ctx, obj.Bucket, obj.Key, bytes.NewReader(obj.Data), int64(len(obj.Data)),
			minio.PutObjectOptions{ContentType: "application/octet-stream"})
		if err != nil {
			t.Fatalf("put %s/%s: %v", obj.Bucket, obj.Key, err)
		}
	}
}

// StartMinioContainer starts a Minio container and returns a client for
// seeding it. AWS credentials for the container are exported to the
// environment so SDK clients pick them up.
func StartMinioContainer(t *testing.T, ctx context.Context) *MinioEnv {
	t.Helper()

	const (
		accessKey = "minioadmin"
		secretKey = "minioadmin"
	)

	minioReq := testcontainers.ContainerRequest{
		Image:        "minio/minio:latest",
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     accessKey,
			"MINIO_ROOT_PASSWORD": secretKey,
		},
		Cmd:        []string{"server", "/data"},
		WaitingFor: wait.ForHTTP("/minio/health/ready").WithPort("9000"),
	}

	minioContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: minioReq,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start minio container: %v", err)
	}

	host, err := minioContainer.Host(ctx)
	if err != nil {
		t.Fatalf("get container host: %v", err)
	}

	port, err := minioContainer.MappedPort(ctx, "9000")
	if err != nil {
		t.Fatalf("get container port: %v", err)
	}

	hostPort := fmt.Sprintf("%s:%s", host, port.Port())
	client, err := minio.New(hostPort, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: false,
		Region: "us-east-1",
	})
	if err != nil {
		t.Fatalf("create minio client: %v", err)
	}

	// Set AWS credentials via environment variables (the SDK reads these)
	t.Setenv("AWS_ACCESS_KEY_ID", accessKey)
	t.Setenv("AWS_SECRET_ACCESS_KEY", secretKey)
	t.Setenv("AWS_REGION", "us-east-1")

	return &MinioEnv{
		Container: minioContainer,
		Client:    client,
		Endpoint:  "http://" + hostPort,
		AccessKey: accessKey,
		SecretKey: secretKey,
	}
}

// StartSTACServer serves catalog items at
// /collections/{collection}/items/{id}. Keys of items are "collection/id".
func StartSTACServer(t *testing.T, items map[string]any) *httptest.Server {
	t.Helper()

	docs := make(map[string][]byte, len(items))
	for key, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			t.Fatalf("encode item %s: %v", key, err)
		}
		docs[key] = data
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /collections/{collection}/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		data, ok := docs[r.PathValue("collection")+"/"+r.PathValue("id")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		w.Write(data)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// CompareReaderToData compares reader output with expected data in chunks.
func CompareReaderToData(t *testing.T, reader io.Reader, expected []byte) {
	t.Helper()

	buf := make([]byte, 64*1024)
	offset := 0

	for {
		n, err := reader.Read(buf)
		if n > 0 {
			if offset+n > len(expected) {
				t.Fatalf("read more data than expected: offset=%d, n=%d, expected len=%d",
					offset, n, len(expected))
			}
			if !bytes.Equal(buf[:n], expected[offset:offset+n]) {
				t.Fatalf("data mismatch at offset %d", offset)
			}
			offset += n
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read error at offset %d: %v", offset, err)
		}
	}

	if offset != len(expected) {
		t.Fatalf("incomplete read: got %d bytes, want %d", offset, len(expected))
	}
}

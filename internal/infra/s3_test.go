package infra

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 accepts single-part uploads and bucket lookups.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodHead:
		// BucketExists
		if r.URL.Path == "/images" || r.URL.Path == "/images/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = body
		f.types[r.URL.Path] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"0123456789abcdef0123456789abcdef"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newFakeS3(t *testing.T) (*fakeS3, S3Options) {
	t.Helper()
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	return fake, S3Options{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "access",
		SecretKey: "secret",
		Bucket:    "images",
		Region:    "us-east-1",
	}
}

func TestS3PutObject(t *testing.T) {
	fake, opts := newFakeS3(t)

	client, err := NewS3Client(context.Background(), opts)
	require.NoError(t, err)

	data := []byte("\x89PNG fake")
	url, err := client.PutObject(context.Background(), "2025-03-01/req/page-1-Im 1.png", bytes.NewReader(data), int64(len(data)), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "http://"+opts.Endpoint+"/images/2025-03-01/req/page-1-Im%201.png", url)
	// the body may arrive aws-chunked
	assert.Contains(t, string(fake.objects["/images/2025-03-01/req/page-1-Im 1.png"]), string(data))
	assert.Equal(t, "image/png", fake.types["/images/2025-03-01/req/page-1-Im 1.png"])
}

func TestS3MissingBucket(t *testing.T) {
	_, opts := newFakeS3(t)
	opts.Bucket = "absent"

	_, err := NewS3Client(context.Background(), opts)
	assert.ErrorContains(t, err, `bucket "absent" does not exist`)
}

func TestS3PublicURLScheme(t *testing.T) {
	mc, err := minio.New("s3.example.com", &minio.Options{Creds: credentials.NewStaticV4("a", "b", ""), Secure: true})
	require.NoError(t, err)

	c := newS3Client(mc, S3Options{Endpoint: "s3.example.com", Bucket: "b", Secure: true})
	assert.Equal(t, "https://s3.example.com/b/x/y.png", c.buildPublicURL("x/y.png"))
}

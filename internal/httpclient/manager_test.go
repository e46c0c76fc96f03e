package httpclient

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetClientReusesByFingerprint(t *testing.T) {
	m := NewManager()

	a := m.GetClient(DefaultConfig())
	b := m.GetClient(DefaultConfig())
	assert.Same(t, a, b, "identical configs must share one client")

	other := DefaultConfig()
	other.RequestTimeout = 5 * time.Second
	c := m.GetClient(other)
	assert.NotSame(t, a, c, "different configs must get distinct clients")
}

func TestGetClientTimeout(t *testing.T) {
	m := NewManager()

	cfg := DefaultConfig()
	cfg.RequestTimeout = 42 * time.Second
	client := m.GetClient(cfg)

	assert.Equal(t, 42*time.Second, client.Timeout)
}

func TestDecompressResponseGzip(t *testing.T) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte("hello world"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	out, err := DecompressResponse("gzip", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world"), out)
}

func TestDecompressResponseDeflate(t *testing.T) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	require.NoError(t, err)
	_, err = w.Write([]byte("hello world"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	out, err := DecompressResponse("deflate", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world"), out)
}

func TestDecompressResponseBrotli(t *testing.T) {
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	_, err := w.Write([]byte("hello world"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	out, err := DecompressResponse("br", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world"), out)
}

func TestDecompressResponseZstd(t *testing.T) {
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write([]byte("hello world"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	out, err := DecompressResponse("zstd", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world"), out)
}

func TestDecompressResponsePassthrough(t *testing.T) {
	// No encoding, unknown encoding and corrupt data all return the
	// original bytes.
	out, err := DecompressResponse("", []byte("plain"))
	require.NoError(t, err)
	assert.Equal(t, []byte("plain"), out)

	out, err = DecompressResponse("snappy", []byte("plain"))
	require.NoError(t, err)
	assert.Equal(t, []byte("plain"), out)

	out, err = DecompressResponse("gzip", []byte("not gzip"))
	require.NoError(t, err)
	assert.Equal(t, []byte("not gzip"), out)
}

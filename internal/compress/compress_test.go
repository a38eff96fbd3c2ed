package compress

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isJSON(name string) bool { return strings.HasSuffix(name, ".json") }

func zipOf(t *testing.T, files map[string]string, order ...string) io.ReadCloser {
	t.Helper()
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return io.NopCloser(buf)
}

func tarOf(t *testing.T, files map[string]string, order ...string) io.ReadCloser {
	t.Helper()
	buf := &bytes.Buffer{}
	tw := tar.NewWriter(buf)
	for _, name := range order {
		body := files[name]
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: int64(len(body)), Typeflag: tar.TypeReg}))
		_, err := tw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	return io.NopCloser(buf)
}

func TestKind(t *testing.T) {
	assert.Equal(t, "zip", Kind("bundle.ZIP"))
	assert.Equal(t, "tar", Kind("/static/products.tar"))
	assert.Equal(t, "", Kind("products.json"))
}

func TestOpenZip(t *testing.T) {
	files := map[string]string{"README.txt": "hello", "data/products.json": `[]`}
	e, err := Open("zip", zipOf(t, files, "README.txt", "data/products.json"), isJSON)
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, "data/products.json", e.Name())
	body, err := io.ReadAll(e)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(body))
}

func TestOpenTar(t *testing.T) {
	files := map[string]string{"notes.md": "# notes", "products.json": `[{"id":"p1"}]`}
	e, err := Open("tar", tarOf(t, files, "notes.md", "products.json"), isJSON)
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, "products.json", e.Name())
	body, err := io.ReadAll(e)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"p1"}]`, string(body))
}

func TestOpenNoMatch(t *testing.T) {
	files := map[string]string{"README.txt": "hello"}

	_, err := Open("zip", zipOf(t, files, "README.txt"), isJSON)
	assert.ErrorIs(t, err, ErrNoEntry)

	_, err = Open("tar", tarOf(t, files, "README.txt"), isJSON)
	assert.ErrorIs(t, err, ErrNoEntry)
}

func TestOpenUnsupported(t *testing.T) {
	_, err := Open("rar", io.NopCloser(strings.NewReader("")), isJSON)
	assert.Error(t, err)
}

func TestOpenCorruptZip(t *testing.T) {
	_, err := Open("zip", io.NopCloser(strings.NewReader("not a zip")), isJSON)
	assert.Error(t, err)
}

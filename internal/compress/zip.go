package compress

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
)

// ZipReader implements io.ReadCloser over the first matching file of a ZIP archive.
type ZipReader struct {
	current io.ReadCloser
	name    string
}

// NewZipReader reads the whole archive from r and opens the first regular
// file whose name satisfies match.
func NewZipReader(r io.ReadCloser, match func(string) bool) (*ZipReader, error) {
	defer r.Close()

	// Read the entire archive into a buffer
	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, r); err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		return nil, err
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if match(f.Name) {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			return &ZipReader{current: rc, name: f.Name}, nil
		}
	}

	return nil, fmt.Errorf("zip: %w", ErrNoEntry)
}

// Name is the archive path of the opened file.
func (z *ZipReader) Name() string {
	return z.name
}

func (z *ZipReader) Read(p []byte) (int, error) {
	return z.current.Read(p)
}

func (z *ZipReader) Close() error {
	return z.current.Close()
}

package compress

import (
	"archive/tar"
	"fmt"
	"io"
)

// TarReader implements io.ReadCloser over the first matching file of a TAR archive.
type TarReader struct {
	src  io.Closer
	tr   *tar.Reader
	name string
}

// NewTarReader advances r to the first regular file whose name satisfies
// match. The archive is streamed; closing the TarReader closes r.
func NewTarReader(r io.ReadCloser, match func(string) bool) (*TarReader, error) {
	tr := tar.NewReader(r)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			r.Close()
			return nil, err
		}
		if header.Typeflag == tar.TypeReg && match(header.Name) {
			return &TarReader{src: r, tr: tr, name: header.Name}, nil
		}
	}

	r.Close()
	return nil, fmt.Errorf("tar: %w", ErrNoEntry)
}

func (t *TarReader) Name() string {
	return t.name
}

func (t *TarReader) Read(p []byte) (int, error) {
	return t.tr.Read(p)
}

func (t *TarReader) Close() error {
	return t.src.Close()
}

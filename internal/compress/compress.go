// Package compress extracts a single document from zip and tar bundles.
package compress

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// ErrNoEntry is returned when an archive holds no matching file.
var ErrNoEntry = errors.New("no matching file in archive")

// Entry is an opened file inside an archive.
type Entry interface {
	io.ReadCloser
	Name() string
}

// Kind returns "zip" or "tar" for archive names, "" otherwise.
func Kind(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".zip":
		return "zip"
	case ".tar":
		return "tar"
	}
	return ""
}

// Open returns the first entry of the archive r that satisfies match.
func Open(kind string, r io.ReadCloser, match func(string) bool) (Entry, error) {
	switch kind {
	case "zip":
		zr, err := NewZipReader(r, match)
		if err != nil {
			return nil, err
		}
		return zr, nil
	case "tar":
		tr, err := NewTarReader(r, match)
		if err != nil {
			return nil, err
		}
		return tr, nil
	}
	r.Close()
	return nil, fmt.Errorf("unsupported archive type %q", kind)
}

package fetch

import (
	"archive/zip"
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"
)

var ErrMemberNotFound = errors.New("zip member not found")

// Open returns a reader over a cached file, decompressing transparently by
// extension: .xz and .gz streams are unpacked, anything else passes through.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	switch {
	case strings.HasSuffix(path, ".xz"):
		xr, err := xz.NewReader(bufio.NewReader(f))
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("open xz %s: %w", path, err)
		}
		return &decompressed{Reader: xr, file: f}, nil
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("open gzip %s: %w", path, err)
		}
		return &decompressed{Reader: zr, file: f, closer: zr}, nil
	default:
		return f, nil
	}
}

// OpenZipMember opens one named member of a zip archive. A missing member
// is a structural error for the source.
func OpenZipMember(path, member string) (io.ReadCloser, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip %s: %w", path, err)
	}
	for _, f := range zr.File {
		if f.Name != member {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			_ = zr.Close()
			return nil, fmt.Errorf("open zip member %s: %w", member, err)
		}
		return &zipMember{rc: rc, zr: zr}, nil
	}
	_ = zr.Close()
	return nil, fmt.Errorf("%w: %q in %s", ErrMemberNotFound, member, path)
}

type decompressed struct {
	io.Reader
	file   *os.File
	closer io.Closer // decompressor, when it needs closing
}

func (d *decompressed) Close() error {
	var err error
	if d.closer != nil {
		err = d.closer.Close()
	}
	if cerr := d.file.Close(); err == nil {
		err = cerr
	}
	return err
}

type zipMember struct {
	rc io.ReadCloser
	zr *zip.ReadCloser
}

func (m *zipMember) Read(p []byte) (int, error) {
	return m.rc.Read(p)
}

func (m *zipMember) Close() error {
	err := m.rc.Close()
	if cerr := m.zr.Close(); err == nil {
		err = cerr
	}
	return err
}

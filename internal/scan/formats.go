package scan

import (
	"archive/zip"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/bodgit/sevenzip"

	"romscan/internal/dat"
)

// ErrFormat signals that a handler does not recognize the container; the
// caller falls through to the next handler in order.
var ErrFormat = errors.New("unrecognized archive format")

// formatHandler attempts to enumerate one container format. Scan returns
// ErrFormat (possibly wrapped) when the file is not this handler's format.
type formatHandler struct {
	name string
	scan func(path string) ([]Entry, error)
}

// formats is the fixed preference order: 7z first, then zip.
var formats = []formatHandler{
	{name: "7z", scan: scanSevenZip},
	{name: "zip", scan: scanZip},
}

// scanArchive tries each supported format in order; the first success wins.
// When every handler fails the archive is unusable and the caller skips it.
func scanArchive(path string) ([]Entry, error) {
	var firstErr error
	for _, f := range formats {
		entries, err := f.scan(path)
		if err == nil {
			return entries, nil
		}
		if firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return nil, firstErr
}

func scanSevenZip(path string) ([]Entry, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	defer r.Close()

	entries := make([]Entry, 0, len(r.File))
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		h := dat.ContentHash{Size: f.UncompressedSize, CRC: f.CRC32}
		if h.CRC == 0 && h.Size > 0 {
			// Some 7z writers omit stored CRCs; hash the stream instead.
			crc, err := crcOf(f)
			if err != nil {
				continue
			}
			h.CRC = crc
		}
		entries = append(entries, Entry{Name: f.Name, Hash: h})
	}
	return entries, nil
}

func crcOf(f *sevenzip.File) (uint32, error) {
	rc, err := f.Open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()
	h := crc32.NewIEEE()
	if _, err := io.Copy(h, rc); err != nil {
		return 0, err
	}
	return h.Sum32(), nil
}

// scanZip reads (size, crc) from the central directory without
// decompressing any entry.
func scanZip(path string) ([]Entry, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return nil, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		return nil, err
	}
	defer r.Close()

	entries := make([]Entry, 0, len(r.File))
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entries = append(entries, Entry{
			Name: f.Name,
			Hash: dat.ContentHash{Size: f.UncompressedSize64, CRC: f.CRC32},
		})
	}
	return entries, nil
}

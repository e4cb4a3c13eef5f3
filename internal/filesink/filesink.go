package filesink

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// File describes one closed chunk.
type File struct {
	Name     string `json:"name"`
	Rows     int    `json:"rows"`
	Bytes    int64  `json:"bytes"`
	Checksum string `json:"xxhash64"`
}

// FileSink writes CSV rows into gzip chunk files named
// <name>_<NNNNNN>.csv.gz, starting a new file every rotateEvery rows.
type FileSink struct {
	dir         string
	name        string
	chunk       int
	rowsIn      int
	rotateEvery int
	closed      []File

	f    *os.File
	cw   *countingWriter
	hash *xxhash.Digest
	bw   *bufio.Writer
	gz   *gzip.Writer
	csv  *csv.Writer
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func New(dir, name string, rotateEvery int) *FileSink {
	if rotateEvery < 1 {
		rotateEvery = 1
	}

	return &FileSink{
		dir:         dir,
		name:        name,
		rotateEvery: rotateEvery,
	}
}

// Close flushes and closes the current chunk, if any.
func (s *FileSink) Close() error {
	if s.f == nil {
		return nil
	}

	var err error

	s.csv.Flush()
	if e := s.csv.Error(); e != nil && err == nil {
		err = e
	}

	if e := s.gz.Close(); e != nil && err == nil {
		err = e
	}

	if e := s.bw.Flush(); e != nil && err == nil {
		err = e
	}

	if e := s.f.Close(); e != nil && err == nil {
		err = e
	}

	if err == nil {
		s.closed = append(s.closed, File{
			Name:     filepath.Base(s.f.Name()),
			Rows:     s.rowsIn,
			Bytes:    s.cw.n,
			Checksum: fmt.Sprintf("%016x", s.hash.Sum64()),
		})
	}

	s.f, s.cw, s.hash, s.bw, s.gz, s.csv = nil, nil, nil, nil, nil, nil
	s.rowsIn = 0

	return err
}

func (s *FileSink) Write(rec []string) error {
	if s.csv == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	if err := s.csv.Write(rec); err != nil {
		return err
	}

	s.rowsIn++

	return nil
}

// RotateIfNeeded closes the current chunk once it is full and reports
// how many rows it held.
func (s *FileSink) RotateIfNeeded() (bool, int, error) {
	if s.rowsIn >= s.rotateEvery {
		rows := s.rowsIn

		if err := s.Close(); err != nil {
			return false, 0, err
		}

		return true, rows, nil
	}

	return false, 0, nil
}

func (s *FileSink) RowsInChunk() int {
	return s.rowsIn
}

// Files lists the chunks closed so far in creation order.
func (s *FileSink) Files() []File {
	return append([]File(nil), s.closed...)
}

func (s *FileSink) open() error {
	s.chunk++
	path := filepath.Join(s.dir, fmt.Sprintf("%s_%06d.csv.gz", s.name, s.chunk))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	hash := xxhash.New()
	cw := &countingWriter{w: io.MultiWriter(f, hash)}
	bw := bufio.NewWriterSize(cw, 1<<20)
	gz, err := gzip.NewWriterLevel(bw, gzip.BestSpeed)
	if err != nil {
		_ = f.Close()
		return err
	}

	s.f, s.cw, s.hash, s.bw, s.gz = f, cw, hash, bw, gz
	s.csv = csv.NewWriter(gz)
	s.rowsIn = 0

	return nil
}

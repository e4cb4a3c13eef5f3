package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"

	"column-partitioner/internal/archive"
	"column-partitioner/internal/filesink"
	"column-partitioner/internal/ranger"
)

const FileName = "manifest.json"

// Partition is the export result of one planned partition.
type Partition struct {
	ranger.Entry
	Rows  uint64          `json:"rows"`
	Files []filesink.File `json:"files"`
}

type Manifest struct {
	Table      string      `json:"table"`
	Column     string      `json:"column"`
	Requested  int         `json:"requested"`
	CreatedAt  time.Time   `json:"createdAt"`
	Partitions []Partition `json:"partitions"`
}

func (m *Manifest) TotalRows() uint64 {
	var n uint64
	for _, p := range m.Partitions {
		n += p.Rows
	}
	return n
}

func Write(dir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, FileName), append(data, '\n'), 0o644)
}

func Read(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	return &m, nil
}

// Verify recomputes the checksum of every listed chunk in dir.
func Verify(dir string, m *Manifest) error {
	return verify(m, func(name string) (string, error) {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return "", err
		}
		defer f.Close()

		return checksum(f)
	})
}

// VerifyArchive reads the manifest packed in a tar.gz produced by
// archive.TarGzDir and checks every listed chunk against it.
func VerifyArchive(path string) (*Manifest, error) {
	var m *Manifest
	sums := map[string]string{}

	err := archive.Walk(path, func(e archive.Entry) error {
		if e.Name == FileName {
			m = &Manifest{}
			if err := json.NewDecoder(e.R).Decode(m); err != nil {
				return fmt.Errorf("decode manifest: %w", err)
			}
			return nil
		}

		sum, err := checksum(e.R)
		if err != nil {
			return fmt.Errorf("%s: %w", e.Name, err)
		}
		sums[e.Name] = sum

		return nil
	})
	if err != nil {
		return nil, err
	}

	if m == nil {
		return nil, fmt.Errorf("%s: no %s in archive", path, FileName)
	}

	err = verify(m, func(name string) (string, error) {
		sum, ok := sums[name]
		if !ok {
			return "", fmt.Errorf("%s missing from archive", name)
		}
		return sum, nil
	})
	if err != nil {
		return nil, err
	}

	return m, nil
}

func verify(m *Manifest, sumOf func(name string) (string, error)) error {
	for _, p := range m.Partitions {
		for _, f := range p.Files {
			sum, err := sumOf(f.Name)
			if err != nil {
				return fmt.Errorf("%s: %w", p.Name, err)
			}
			if sum != f.Checksum {
				return fmt.Errorf("%s: %s checksum mismatch: have %s, want %s", p.Name, f.Name, sum, f.Checksum)
			}
		}
	}

	return nil
}

func checksum(r io.Reader) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}

	return fmt.Sprintf("%016x", h.Sum64()), nil
}

package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Entry is a regular file inside an archive. R must not be read past Size.
type Entry struct {
	Name string
	Size int64
	R    io.Reader
}

// Walk calls cb for every regular file in a tar.gz.
func Walk(path string, cb func(Entry) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gzr, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("tar read: %w", err)
		}

		if !hdr.FileInfo().Mode().IsRegular() {
			continue
		}

		if err := cb(Entry{Name: hdr.Name, Size: hdr.Size, R: io.LimitReader(tr, hdr.Size)}); err != nil {
			return err
		}
	}
}

// TarGzDir packs the regular files under srcDir into dstPath with names
// relative to srcDir. On failure no partial archive is left behind.
func TarGzDir(srcDir, dstPath string) (err error) {
	out, err := os.Create(dstPath)
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	defer func() {
		if err != nil {
			_ = tw.Close()
			_ = gz.Close()
			_ = out.Close()
			_ = os.Remove(dstPath)
		}
	}()

	err = filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}

		return copyFile(tw, path)
	})
	if err != nil {
		return err
	}

	if err = tw.Close(); err != nil {
		return err
	}

	if err = gz.Close(); err != nil {
		return err
	}

	return out.Close()
}

func copyFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)

	return err
}

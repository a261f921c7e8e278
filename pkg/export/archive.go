package export

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

// BuildArchive collects every *.<ext> file in dir into a zip archive at
// archivePath, then removes the originals. Sources are only deleted after
// the archive is fully written and closed.
func BuildArchive(dir string, ext string, archivePath string) error {
	sources, err := filepath.Glob(filepath.Join(dir, "*."+ext))
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("no %s files to archive in %s", ext, dir)
	}

	archive, err := os.Create(archivePath)
	if err != nil {
		return err
	}

	zipWriter := zip.NewWriter(archive)

	for _, source := range sources {
		if err := addFileToZip(zipWriter, source); err != nil {
			zipWriter.Close()
			archive.Close()
			os.Remove(archivePath)
			return fmt.Errorf("could not add %s to archive: %w", filepath.Base(source), err)
		}
	}

	if err := zipWriter.Close(); err != nil {
		archive.Close()
		os.Remove(archivePath)
		return err
	}
	if err := archive.Close(); err != nil {
		os.Remove(archivePath)
		return err
	}

	for _, source := range sources {
		if err := os.Remove(source); err != nil {
			slog.Error("could not remove archived source file", slog.String("path", source), slog.String("error", err.Error()))
		}
	}

	if info, err := os.Stat(archivePath); err == nil {
		slog.Info("export archive assembled",
			slog.String("archive", filepath.Base(archivePath)),
			slog.Int("files", len(sources)),
			slog.String("size", humanize.Bytes(uint64(info.Size()))))
	}

	return nil
}

func addFileToZip(zipWriter *zip.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	entry, err := zipWriter.Create(filepath.Base(path))
	if err != nil {
		return err
	}

	_, err = io.Copy(entry, file)
	return err
}

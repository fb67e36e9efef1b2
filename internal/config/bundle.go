package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mholt/archives"
)

// Bundle is an extracted profile bundle: an rc script, an alias file,
// and a config.yml a team can distribute as one archive and `source`
// in one shot, generalizing the teacher's remote-include extraction to
// a local rc-bundle file.
type Bundle struct {
	RCScript string // path to the extracted rc script, if present
	Aliases  string // path to the extracted alias file, if present
	Config   string // path to the extracted config.yml, if present
}

// LoadProfileBundle extracts the archive at archivePath (.tar.gz or
// .zip) into extractTo and reports the paths of its three well-known
// members.
func LoadProfileBundle(archivePath, extractTo string) (*Bundle, error) {
	if err := os.MkdirAll(extractTo, 0o755); err != nil {
		return nil, fmt.Errorf("creating profile bundle directory: %w", err)
	}

	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening profile bundle: %w", err)
	}
	defer func() { _ = archiveFile.Close() }()

	format, reader, err := archives.Identify(context.Background(), archivePath, archiveFile)
	if err != nil {
		return nil, fmt.Errorf("identifying profile bundle format: %w", err)
	}

	extractor, ok := format.(archives.Extractor)
	if !ok {
		return nil, fmt.Errorf("profile bundle %q is not an archive format", archivePath)
	}

	bundle := &Bundle{}
	handler := func(ctx context.Context, f archives.FileInfo) error {
		outputPath := filepath.Join(extractTo, f.NameInArchive)
		if f.IsDir() {
			return os.MkdirAll(outputPath, f.Mode())
		}
		if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
			return fmt.Errorf("creating parent directory: %w", err)
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("opening %s in profile bundle: %w", f.NameInArchive, err)
		}
		defer func() { _ = rc.Close() }()

		outFile, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
		if err != nil {
			return fmt.Errorf("creating extracted file: %w", err)
		}
		defer func() { _ = outFile.Close() }()

		if _, err := io.Copy(outFile, rc); err != nil {
			return fmt.Errorf("extracting %s: %w", f.NameInArchive, err)
		}

		switch filepath.Base(f.NameInArchive) {
		case "rc", "rc.sh", ".ushellrc":
			bundle.RCScript = outputPath
		case "aliases", "aliases.sh":
			bundle.Aliases = outputPath
		case "config.yml", "config.yaml":
			bundle.Config = outputPath
		}
		return nil
	}

	if err := extractor.Extract(context.Background(), reader, handler); err != nil {
		return nil, fmt.Errorf("extracting profile bundle: %w", err)
	}
	return bundle, nil
}

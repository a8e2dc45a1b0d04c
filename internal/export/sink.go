// Package export writes archive artifacts to a directory as indented JSON files.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// maxNameAttempts bounds the suffixes tried when a filename is taken.
const maxNameAttempts = 100

// FileSink stores exported artifacts under a directory.
type FileSink struct {
	dir string
}

// NewFileSink creates the directory if needed and returns a sink writing into it.
func NewFileSink(dir string) (*FileSink, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("export directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

// Dir returns the export directory.
func (s *FileSink) Dir() string {
	return s.dir
}

// Export writes artifact as 2-space indented JSON and returns the file path.
// The file appears only once fully written. An existing file is never
// replaced: a taken name gets a numeric suffix (Archive_X_abcde_2.json).
func (s *FileSink) Export(ctx context.Context, filename string, artifact any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := filepath.Base(filepath.Clean("/" + filename))
	if name == "/" || name == "." {
		return "", fmt.Errorf("invalid export filename %q", filename)
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding artifact: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, ".export-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("syncing artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing artifact: %w", err)
	}

	return s.publish(tmp.Name(), name)
}

// publish hard-links the finished temp file under the first free name.
// os.Link fails when the target exists.
func (s *FileSink) publish(tmpPath, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; i <= maxNameAttempts; i++ {
		candidate := name
		if i > 1 {
			candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}
		path := filepath.Join(s.dir, candidate)
		err := os.Link(tmpPath, path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("publishing artifact: %w", err)
		}
	}
	return "", fmt.Errorf("publishing artifact: no free name for %q", name)
}

// Open returns the name a previously exported file resolved to, and its
// contents. Path components in filename are ignored.
func (s *FileSink) Open(filename string) (string, []byte, error) {
	name := filepath.Base(filepath.Clean("/" + filename))
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return "", nil, err
	}
	return name, data, nil
}

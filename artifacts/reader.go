package artifacts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var ErrArtifactNotFound = errors.New("artifact not found")

const placeholderFile = ".gitkeep"

type Artifact struct {
	Name        string
	ContentType string
	Content     []byte
}

// SanitizeName reduces a requested name to its final path element.
func SanitizeName(name string) string {
	return filepath.Base(filepath.Clean(strings.ReplaceAll(name, `\`, "/")))
}

// ContentTypeFor maps an artifact extension to its media type.
func ContentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return "application/json"
	case ".xml":
		return "application/xml"
	case ".csv":
		return "text/csv"
	default:
		return "text/plain"
	}
}

// Read returns an artifact from dir. Any directory components in name are
// discarded, so a request can never escape dir.
func Read(dir string, name string) (*Artifact, error) {
	base := SanitizeName(name)
	if base == "" || base == "." || base == ".." || base == "/" || base == placeholderFile {
		return nil, ErrArtifactNotFound
	}
	content, err := os.ReadFile(filepath.Join(dir, base))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			return nil, ErrArtifactNotFound
		}
		// Directories and unreadable entries are reported as absent.
		if info, statErr := os.Stat(filepath.Join(dir, base)); statErr == nil && info.IsDir() {
			return nil, ErrArtifactNotFound
		}
		return nil, fmt.Errorf("read artifact %s: %w", base, err)
	}
	return &Artifact{
		Name:        base,
		ContentType: ContentTypeFor(base),
		Content:     content,
	}, nil
}

// FileSet is the group of artifacts sharing one file id.
type FileSet struct {
	Names []string
	// ModTime is the newest modification time in the group.
	ModTime time.Time
}

// ListFileIds groups the artifacts in dir by file id (the name without extension).
func ListFileIds(dir string) (map[string]*FileSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]*FileSet{}, nil
		}
		return nil, err
	}
	out := map[string]*FileSet{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) {
			continue
		}
		ext := filepath.Ext(name)
		if ext != ".json" && ext != ".xml" && ext != ".csv" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		id := strings.TrimSuffix(name, ext)
		set, ok := out[id]
		if !ok {
			set = &FileSet{}
			out[id] = set
		}
		set.Names = append(set.Names, name)
		if info.ModTime().After(set.ModTime) {
			set.ModTime = info.ModTime()
		}
	}
	for _, set := range out {
		sort.Strings(set.Names)
	}
	return out, nil
}

// Remove deletes the named artifacts from dir. Missing files are not an error.
func Remove(dir string, names ...string) error {
	var errs []error
	for _, name := range names {
		err := os.Remove(filepath.Join(dir, SanitizeName(name)))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

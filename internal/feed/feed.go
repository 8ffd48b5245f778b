/*
Package feed locates NVD JSON feed files on disk.
*/
package feed

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

// sentinel errors.
var (
	ErrNotFound        = errors.New("path not found")
	ErrNoMatchingFiles = errors.New("no matching feed files")
	ErrNotRegularFile  = errors.New("not a regular file")
)

// filenamePattern matches published NVD feed names such as
// nvdcve-1.1-2024.json, nvdcve-2.0-recent.json or nvdcve-1.1-modified.json.
var filenamePattern = regexp.MustCompile(`^nvdcve-\d+\.\d+-[A-Za-z0-9]+\.json$`)

// Locate returns the feed files under dir whose names match the published
// NVD naming scheme, sorted by name for deterministic processing order.
func Locate(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}

		return nil, err
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNotFound, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !filenamePattern.MatchString(entry.Name()) {
			continue
		}

		files = append(files, filepath.Join(dir, entry.Name()))
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s, expected names like nvdcve-1.1-2024.json", ErrNoMatchingFiles, dir)
	}

	sort.Strings(files)

	return files, nil
}

// LocateFile returns path if it exists and is a readable regular file.
func LocateFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}

		return "", err
	}

	if info.IsDir() || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrNotRegularFile, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	_ = f.Close()

	return path, nil
}

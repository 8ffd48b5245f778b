package importer

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vseclab/nvdimport/internal/db"
	"github.com/vseclab/nvdimport/internal/dbmodel"
)

var _ db.Manager = (*memoryDB)(nil)

// memoryDB is an in-memory db.Manager for exercising the run loop.
type memoryDB struct {
	records     map[string]dbmodel.CVE
	failIDs     map[string]bool
	unreachable bool
	initCalls   int
}

func newMemoryDB() *memoryDB {
	return &memoryDB{
		records: make(map[string]dbmodel.CVE),
		failIDs: make(map[string]bool),
	}
}

func (m *memoryDB) InitDB() error {
	m.initCalls++
	return nil
}

func (m *memoryDB) Upsert(model *dbmodel.CVE) (bool, error) {
	if m.unreachable || m.failIDs[model.CVEID] {
		return false, errors.New("write failed")
	}

	_, exists := m.records[model.CVEID]
	m.records[model.CVEID] = *model

	return !exists, nil
}

func (m *memoryDB) Ping() error {
	if m.unreachable {
		return errors.New("connection refused")
	}

	return nil
}

func (m *memoryDB) Close() error { return nil }

const feedThreeGoodOneBad = `{
  "CVE_data_type": "CVE",
  "CVE_Items": [
    {"cve": {"CVE_data_meta": {"ID": "CVE-2024-0001"},
      "description": {"description_data": [{"lang": "en", "value": "first"}]}}},
    {"cve": {"CVE_data_meta": {"ID": "CVE-2024-0002"},
      "description": {"description_data": [{"lang": "en", "value": "second"}]}}},
    {"cve": {"CVE_data_meta": {}}},
    {"cve": {"CVE_data_meta": {"ID": "CVE-2024-0003"},
      "description": {"description_data": [{"lang": "en", "value": "third"}]}}}
  ]
}`

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFeed(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestRunSingleFileWithRecordSkips(t *testing.T) {
	path := writeFeed(t, t.TempDir(), "nvdcve-1.1-2024.json", feedThreeGoodOneBad)

	mem := newMemoryDB()
	result, err := New(mem, discard()).Run([]string{path})
	require.NoError(t, err)

	assert.Equal(t, 1, result.FilesProcessed)
	assert.Equal(t, 0, result.FilesFailed)
	assert.Equal(t, 3, result.Inserted)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Errors)
	assert.True(t, result.Clean())
	assert.Len(t, mem.records, 3)
}

func TestRunIsIdempotent(t *testing.T) {
	path := writeFeed(t, t.TempDir(), "nvdcve-1.1-2024.json", feedThreeGoodOneBad)

	mem := newMemoryDB()
	im := New(mem, discard())

	_, err := im.Run([]string{path})
	require.NoError(t, err)

	result, err := im.Run([]string{path})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 3, result.Updated)
	assert.Len(t, mem.records, 3)
	assert.Equal(t, "first", mem.records["CVE-2024-0001"].Description)
}

func TestRunMixedDirectory(t *testing.T) {
	dir := t.TempDir()
	good := writeFeed(t, dir, "nvdcve-1.1-2024.json", feedThreeGoodOneBad)
	bad := writeFeed(t, dir, "nvdcve-2.0-2024.json", `{"vulnerabilities": [truncated`)

	mem := newMemoryDB()
	result, err := New(mem, discard()).Run([]string{good, bad})
	require.NoError(t, err)

	assert.Equal(t, 1, result.FilesProcessed)
	assert.Equal(t, 1, result.FilesFailed)
	assert.False(t, result.Clean())
	assert.Len(t, mem.records, 3)
}

func TestRunUnknownShapeFileIsSkipped(t *testing.T) {
	dir := t.TempDir()
	bad := writeFeed(t, dir, "nvdcve-1.1-2024.json", `{"advisories": []}`)
	good := writeFeed(t, dir, "nvdcve-2.0-recent.json", `{
	  "vulnerabilities": [
	    {"cve": {"id": "CVE-2024-1111", "descriptions": [{"lang": "en", "value": "streamed"}]}}
	  ]
	}`)

	mem := newMemoryDB()
	result, err := New(mem, discard()).Run([]string{bad, good})
	require.NoError(t, err)

	assert.Equal(t, 1, result.FilesProcessed)
	assert.Equal(t, 1, result.FilesFailed)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, "streamed", mem.records["CVE-2024-1111"].Description)
}

func TestRunStorageErrorContinues(t *testing.T) {
	path := writeFeed(t, t.TempDir(), "nvdcve-1.1-2024.json", feedThreeGoodOneBad)

	mem := newMemoryDB()
	mem.failIDs["CVE-2024-0002"] = true

	result, err := New(mem, discard()).Run([]string{path})
	require.NoError(t, err)

	assert.Equal(t, 1, result.FilesProcessed)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 1, result.Errors)
	assert.True(t, result.Clean())
}

func TestRunStorageUnavailableAborts(t *testing.T) {
	dir := t.TempDir()
	first := writeFeed(t, dir, "nvdcve-1.1-2023.json", feedThreeGoodOneBad)
	second := writeFeed(t, dir, "nvdcve-1.1-2024.json", feedThreeGoodOneBad)

	mem := newMemoryDB()
	mem.unreachable = true

	result, err := New(mem, discard()).Run([]string{first, second})
	assert.ErrorIs(t, err, db.ErrStorageUnavailable)
	assert.Equal(t, 0, result.FilesProcessed)
}

func TestRunMissingFile(t *testing.T) {
	mem := newMemoryDB()
	result, err := New(mem, discard()).Run([]string{filepath.Join(t.TempDir(), "nope.json")})
	require.NoError(t, err)

	assert.Equal(t, 1, result.FilesFailed)
	assert.False(t, result.Clean())
}

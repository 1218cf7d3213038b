// Package storage lays out one lookup run on disk:
//
//	<runs_dir>/<run_id>/
//	    manifest.json
//	    report.json
//	    report.md
//	    raw/<sha256>.bin
//	    raw/tools/<source_id>/...
//
// Every named file is written atomically so a crash never leaves a torn report.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/teranos/footprint/errors"
	"github.com/teranos/footprint/schema"
)

// File names inside a run directory
const (
	ManifestFile   = "manifest.json"
	JSONReportFile = "report.json"
	MarkdownFile   = "report.md"
	RawDirName     = "raw"
	ToolsDirName   = "tools"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// RunPaths locates one run on disk
type RunPaths struct {
	RunDir string `json:"run_dir"`
	RawDir string `json:"raw_dir"`
}

// RunID returns the run directory name, which doubles as the run id
func (p RunPaths) RunID() string {
	return filepath.Base(p.RunDir)
}

// ToolDir returns (creating it) the directory a tool source writes its output into
func (p RunPaths) ToolDir(sourceID string) (string, error) {
	dir := filepath.Join(p.RawDir, ToolsDirName, sourceID)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", errors.Wrapf(err, "create tool output dir %s", dir)
	}
	return dir, nil
}

// NewRunID returns a sortable, collision-resistant run id: UTC second plus 8 hex chars
func NewRunID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return now.UTC().Format("20060102T150405Z") + "-" + suffix
}

// CreateRunDir creates a fresh run directory and its raw subdirectory under base.
// It fails if the run directory already exists.
func CreateRunDir(base string) (RunPaths, error) {
	return createRunDir(base, NewRunID(time.Now()))
}

func createRunDir(base, runID string) (RunPaths, error) {
	if err := os.MkdirAll(base, dirPerm); err != nil {
		return RunPaths{}, errors.Wrapf(err, "create runs dir %s", base)
	}
	runDir := filepath.Join(base, runID)
	if err := os.Mkdir(runDir, dirPerm); err != nil {
		return RunPaths{}, errors.Wrapf(err, "create run dir %s", runDir)
	}
	rawDir := filepath.Join(runDir, RawDirName)
	if err := os.Mkdir(rawDir, dirPerm); err != nil {
		return RunPaths{}, errors.Wrapf(err, "create raw dir %s", rawDir)
	}
	return RunPaths{RunDir: runDir, RawDir: rawDir}, nil
}

// ArtifactHash is the content address of a raw artifact: sha256(content || url)
func ArtifactHash(url string, content []byte) string {
	h := sha256.New()
	h.Write(content)
	h.Write([]byte(url))
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHash is the sha256 of content alone, recorded as evidence raw_hash
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// SaveRawArtifact stores content under raw/<ArtifactHash>.bin and returns the path.
// Saving the same url and content twice yields the same path.
func SaveRawArtifact(paths RunPaths, url string, content []byte) (string, error) {
	path := filepath.Join(paths.RawDir, ArtifactHash(url, content)+".bin")
	if err := writeAtomic(path, content); err != nil {
		return "", errors.Wrapf(err, "save raw artifact for %s", url)
	}
	return path, nil
}

// WriteText writes text to dir/name and returns the path
func WriteText(dir, name, text string) (string, error) {
	path := filepath.Join(dir, name)
	if err := writeAtomic(path, []byte(text)); err != nil {
		return "", errors.Wrapf(err, "write %s", name)
	}
	return path, nil
}

// WriteJSON writes v as indented JSON to dir/name and returns the path.
// Map keys are sorted by encoding/json.
func WriteJSON(dir, name string, v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", errors.Wrapf(err, "marshal %s", name)
	}
	return WriteText(dir, name, string(data)+"\n")
}

// WriteManifest writes manifest.json into the run directory
func WriteManifest(paths RunPaths, manifest schema.RunManifest) (string, error) {
	return WriteJSON(paths.RunDir, ManifestFile, manifest)
}

// ReadManifest loads manifest.json from a run directory
func ReadManifest(runDir string) (*schema.RunManifest, error) {
	data, err := os.ReadFile(filepath.Join(runDir, ManifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("manifest in %s", runDir)
		}
		return nil, errors.Wrapf(err, "read manifest in %s", runDir)
	}
	var m schema.RunManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "decode manifest in %s", runDir)
	}
	return &m, nil
}

// writeAtomic writes data to a temp file in the target directory, then renames it into place
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".footprint-*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Chmod(tmpPath, filePerm); err != nil {
		return errors.Wrap(err, "chmod temp file")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Wrap(err, "rename into place")
	}
	success = true
	return nil
}

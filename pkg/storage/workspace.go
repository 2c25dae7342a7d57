// Package storage manages where downloaded data files live during and after a check run.
package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Artifact is a data file that passed validation.
type Artifact struct {
	Name string
	Path string
	Size int64
}

// SizeMB returns the artifact size in megabytes.
func (a Artifact) SizeMB() float64 {
	return float64(a.Size) / (1024 * 1024)
}

// Workspace holds downloads in a staging directory that is removed by Close.
// With a publish directory, files that pass are moved there and files that
// fail are removed from it. Without one, nothing outlives the workspace.
type Workspace struct {
	fs         afero.Fs
	staging    string
	publishDir string
	log        *slog.Logger
	published  []Artifact
}

// NewWorkspace creates the staging directory. An empty publishDir selects
// gate-only mode.
func NewWorkspace(fs afero.Fs, publishDir string, log *slog.Logger) (*Workspace, error) {
	if log == nil {
		log = slog.Default()
	}

	parent := ""
	if publishDir != "" {
		if err := fs.MkdirAll(publishDir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir %s: %w", publishDir, err)
		}
		// same filesystem as the publish dir so Publish is a rename
		parent = publishDir
	}
	staging, err := afero.TempDir(fs, parent, ".geodata-staging-")
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	log.Debug("workspace ready", "staging", staging, "publish_dir", publishDir)

	return &Workspace{
		fs:         fs,
		staging:    staging,
		publishDir: publishDir,
		log:        log,
	}, nil
}

// Fs returns the filesystem the workspace lives on.
func (w *Workspace) Fs() afero.Fs {
	return w.fs
}

// Publishing reports whether passing files are kept after Close.
func (w *Workspace) Publishing() bool {
	return w.publishDir != ""
}

// StagingDir returns the temporary directory downloads are written to.
func (w *Workspace) StagingDir() string {
	return w.staging
}

// StagingPath returns the download destination for name.
func (w *Workspace) StagingPath(name string) string {
	return filepath.Join(w.staging, name)
}

// Publish marks name as validated. In publish mode the staged file is moved
// to the output directory, replacing any previous file of that name.
func (w *Workspace) Publish(name string) (Artifact, error) {
	src := w.StagingPath(name)
	info, err := w.fs.Stat(src)
	if err != nil {
		return Artifact{}, fmt.Errorf("stat %s: %w", src, err)
	}

	artifact := Artifact{Name: name, Path: src, Size: info.Size()}
	if w.Publishing() {
		dst := filepath.Join(w.publishDir, name)
		if err := w.remove(dst); err != nil {
			return Artifact{}, err
		}
		if err := w.fs.Rename(src, dst); err != nil {
			return Artifact{}, fmt.Errorf("publish %s: %w", name, err)
		}
		artifact.Path = dst
		w.log.Debug("published artifact", "name", name, "path", dst, "bytes", artifact.Size)
	}
	w.published = append(w.published, artifact)
	return artifact, nil
}

// Discard removes every copy of name, staged or published.
func (w *Workspace) Discard(name string) error {
	errs := []error{w.remove(w.StagingPath(name))}
	if w.Publishing() {
		errs = append(errs, w.remove(filepath.Join(w.publishDir, name)))
	}
	return errors.Join(errs...)
}

// Published returns the artifacts accepted so far, in publish order.
func (w *Workspace) Published() []Artifact {
	return append([]Artifact(nil), w.published...)
}

// Close removes the staging directory and anything still in it.
func (w *Workspace) Close() error {
	if err := w.fs.RemoveAll(w.staging); err != nil {
		return fmt.Errorf("remove staging dir %s: %w", w.staging, err)
	}
	return nil
}

func (w *Workspace) remove(path string) error {
	if err := w.fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

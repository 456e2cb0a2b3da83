package store

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/lox/holdem-engine/internal/game"
)

const snapshotExt = ".json"

// File keeps one JSON file per game in a directory.
type File struct {
	dir string
}

// NewFile creates the directory if needed.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, errors.New("file store needs a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating %s", dir)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(gameID string) (string, error) {
	if gameID == "" || strings.ContainsAny(gameID, `/\`) || gameID == "." || gameID == ".." {
		return "", errors.Errorf("invalid game id %q", gameID)
	}
	return filepath.Join(f.dir, gameID+snapshotExt), nil
}

func (f *File) Save(_ context.Context, snap game.Snapshot) error {
	path, err := f.path(snap.GameID)
	if err != nil {
		return err
	}
	data, err := encode(snap)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data, 0o644)
}

func (f *File) Load(_ context.Context, gameID string) (game.Snapshot, error) {
	path, err := f.path(gameID)
	if err != nil {
		return game.Snapshot{}, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return game.Snapshot{}, ErrNotFound
	} else if err != nil {
		return game.Snapshot{}, errors.Wrapf(err, "reading %s", path)
	}
	return decode(gameID, data)
}

func (f *File) List(context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", f.dir)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), snapshotExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), snapshotExt))
	}
	slices.Sort(ids)
	return ids, nil
}

func (f *File) Delete(_ context.Context, gameID string) error {
	path, err := f.path(gameID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "removing %s", path)
	}
	return nil
}

func (f *File) Close() error { return nil }

// writeFileAtomic writes to a temporary file in the same directory and
// renames it over filename, so readers see either the old or the new
// snapshot and never a partial one.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".tmp.*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	tmpPath := tmp.Name()

	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return errors.Wrap(err, "failed to write temp file")
	}
	if err := tmp.Sync(); err != nil {
		return errors.Wrap(err, "failed to sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close temp file")
	}
	tmp = nil

	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, "failed to set permissions")
	}
	if err := os.Rename(tmpPath, filename); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, "failed to rename temp file")
	}
	return nil
}

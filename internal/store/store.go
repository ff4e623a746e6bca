package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"sjsage522/promowatch/logger"

	apperrors "sjsage522/promowatch/pkg/errors"
)

// TimestampLayout is the local time format of Entry.FirstSeen
const TimestampLayout = "2006-01-02 15:04:05"

// Entry is what is remembered about a promotion once it has been seen
type Entry struct {
	Title     string `json:"title"`
	Code      string `json:"code"`
	ImageURL  string `json:"img_url"`
	FirstSeen string `json:"first_seen"`
}

// Snapshot maps promotion ids to their entries
type Snapshot map[string]Entry

// Clone returns an independent copy of the snapshot
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for id, entry := range s {
		out[id] = entry
	}
	return out
}

// Store loads and saves the whole snapshot at once
type Store interface {
	// EnsureDir creates the storage location if needed
	EnsureDir() error

	// Load returns the persisted snapshot. A missing store is empty, not an error.
	Load() (Snapshot, error)

	// Save replaces the persisted snapshot
	Save(snapshot Snapshot) error
}

// FileStore keeps the snapshot as a JSON object in a single file
type FileStore struct {
	path string
	log  *logger.Logger
}

// NewFileStore creates a store backed by the JSON file at path
func NewFileStore(path string, log *logger.Logger) *FileStore {
	if log == nil {
		log = logger.Nop()
	}
	return &FileStore{path: path, log: log}
}

// Path returns the backing file
func (s *FileStore) Path() string {
	return s.path
}

// EnsureDir creates the directory holding the store file
func (s *FileStore) EnsureDir() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.NewStore(s.path, "failed to create storage directory", err)
	}
	return nil
}

// Load reads the snapshot. On a read or decode error it returns an empty
// snapshot together with the error, so callers may carry on with it.
func (s *FileStore) Load() (Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, apperrors.NewStore(s.path, "failed to read store", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, apperrors.NewStore(s.path, "corrupt store file", err)
	}
	if snapshot == nil {
		snapshot = Snapshot{}
	}

	s.log.Debug().Int("entries", len(snapshot)).Str("path", s.path).Msg("Store loaded")
	return snapshot, nil
}

// Save overwrites the store file with snapshot. The file is replaced
// atomically so a crash mid-write leaves the previous snapshot in place.
func (s *FileStore) Save(snapshot Snapshot) error {
	if snapshot == nil {
		snapshot = Snapshot{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot); err != nil {
		return apperrors.NewStore(s.path, "failed to encode store", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return apperrors.NewStore(s.path, "failed to create temp file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return apperrors.NewStore(s.path, "failed to write store", err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.NewStore(s.path, "failed to write store", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return apperrors.NewStore(s.path, "failed to replace store", err)
	}

	s.log.Debug().Int("entries", len(snapshot)).Str("path", s.path).Msg("Store saved")
	return nil
}

package session

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/sinbandera-io/vehicular-control/internal/constants"
	"github.com/sinbandera-io/vehicular-control/internal/securefile"
)

// Session records which account is connected.
type Session struct {
	Account     string    `json:"account"`
	ConnectedAt time.Time `json:"connected_at"`
}

// Store persists the session between runs.
type Store interface {
	// Load returns nil, nil when no session is stored.
	Load() (*Session, error)
	Save(s Session) error
	Clear() error
}

type fileRecord struct {
	Schema  int     `json:"schema"`
	Session Session `json:"session"`
}

// FileStore keeps the session in a small JSON file under the state directory.
type FileStore struct {
	Path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore uses path, or the canonical state path when path is empty.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		p, err := securefile.StatePath(constants.SessionFile)
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &FileStore{Path: path}, nil
}

func (f *FileStore) Load() (*Session, error) {
	rec, err := securefile.ReadJSON[fileRecord](f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "load session %s", f.Path)
	}
	if rec.Session.Account == "" {
		return nil, nil
	}
	s := rec.Session
	return &s, nil
}

func (f *FileStore) Save(s Session) error {
	if s.Account == "" {
		return errors.New("session account is empty")
	}
	return securefile.WriteJSON(f.Path, fileRecord{Schema: constants.SchemaV1, Session: s})
}

func (f *FileStore) Clear() error {
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "clear session %s", f.Path)
	}
	return nil
}

// MemoryStore keeps the session in memory only.
type MemoryStore struct {
	s *Session
}

func (m *MemoryStore) Load() (*Session, error) {
	if m.s == nil {
		return nil, nil
	}
	s := *m.s
	return &s, nil
}

func (m *MemoryStore) Save(s Session) error {
	m.s = &s
	return nil
}

func (m *MemoryStore) Clear() error {
	m.s = nil
	return nil
}

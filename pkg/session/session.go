// Package session holds the mutable state of one deployment run: its ID, the
// detected distribution and whether package repositories were refreshed.
//
// A Session can be backed by a JSON state file so that separate stackpkg
// invocations belonging to the same run share the "repos updated" flag:
//
//	{"run_id":"...","repos_updated":true,"distro":{"vendor":"Ubuntu",...}}
package session

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/mensylisir/stackpkg/pkg/distro"
	serrors "github.com/mensylisir/stackpkg/pkg/errors"
)

const (
	keyRunID        = "run_id"
	keyReposUpdated = "repos_updated"
	keyDistro       = "distro"
)

// Session is safe for concurrent use.
type Session struct {
	mu           sync.Mutex
	id           string
	distro       *distro.Info
	reposUpdated bool
	statePath    string
}

// New creates an in-memory session with a fresh run ID.
func New() *Session {
	return &Session{id: uuid.NewString()}
}

// Open returns a session persisted at path. An existing file is loaded; a
// missing one is created on the first mutation. An empty path is equivalent
// to New.
func Open(path string) (*Session, error) {
	s := New()
	if path == "" {
		return s, nil
	}
	s.statePath = path

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, serrors.Wrap(serrors.KindConfig, "session.Open", err, "failed to read state file")
	}
	if len(data) == 0 {
		return s, nil
	}
	if !gjson.ValidBytes(data) {
		return nil, serrors.New(serrors.KindConfig, "session.Open", "state file %s is not valid JSON", path)
	}

	if id := gjson.GetBytes(data, keyRunID).String(); id != "" {
		s.id = id
	}
	s.reposUpdated = gjson.GetBytes(data, keyReposUpdated).Bool()
	if d := gjson.GetBytes(data, keyDistro); d.IsObject() {
		s.distro = &distro.Info{
			Vendor:    d.Get("vendor").String(),
			Release:   d.Get("release").String(),
			Family:    distro.Family(d.Get("package_family").String()),
			Codename:  d.Get("codename").String(),
			DistroTag: d.Get("distro_tag").String(),
			Source:    d.Get("source").String(),
		}
	}
	return s, nil
}

func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// StatePath is the backing file, or "" for an in-memory session.
func (s *Session) StatePath() string {
	return s.statePath
}

// Distro returns a copy of the cached distribution, or nil.
func (s *Session) Distro() *distro.Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.distro.Clone()
}

// SetDistro caches info and persists the session.
func (s *Session) SetDistro(info *distro.Info) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.distro = info.Clone()
	return s.saveLocked()
}

func (s *Session) ReposUpdated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reposUpdated
}

// SetReposUpdated records the refresh state and persists the session. The
// in-memory flag is updated even if persisting fails.
func (s *Session) SetReposUpdated(v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reposUpdated = v
	return s.saveLocked()
}

func (s *Session) saveLocked() error {
	if s.statePath == "" {
		return nil
	}

	doc, err := os.ReadFile(s.statePath)
	if err != nil || !gjson.ValidBytes(doc) || len(doc) == 0 {
		doc = []byte("{}")
	}

	if doc, err = sjson.SetBytes(doc, keyRunID, s.id); err != nil {
		return s.saveErr(err)
	}
	if doc, err = sjson.SetBytes(doc, keyReposUpdated, s.reposUpdated); err != nil {
		return s.saveErr(err)
	}
	if s.distro != nil {
		if doc, err = sjson.SetBytes(doc, keyDistro, s.distro); err != nil {
			return s.saveErr(err)
		}
	} else if doc, err = sjson.DeleteBytes(doc, keyDistro); err != nil {
		return s.saveErr(err)
	}

	if err := os.MkdirAll(filepath.Dir(s.statePath), 0755); err != nil {
		return s.saveErr(err)
	}
	tmp := s.statePath + ".tmp"
	if err := os.WriteFile(tmp, doc, 0644); err != nil {
		return s.saveErr(err)
	}
	if err := os.Rename(tmp, s.statePath); err != nil {
		return s.saveErr(err)
	}
	return nil
}

func (s *Session) saveErr(err error) error {
	return serrors.Wrap(serrors.KindConfig, "session.Save", err, "failed to write state file "+s.statePath)
}

var _ distro.Cache = (*Session)(nil)

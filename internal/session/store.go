package session

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

// Admin is the logged-in administrator's profile as shown in the sidebar.
type Admin struct {
	FullName string `toml:"full_name,omitempty"`
	Email    string `toml:"email,omitempty"`
}

// DisplayName falls back to "Admin" when no name was recorded.
func (a Admin) DisplayName() string {
	if a.FullName == "" {
		return "Admin"
	}
	return a.FullName
}

// Profile is a named API endpoint with its credentials.
type Profile struct {
	URL        string    `toml:"url"`
	Token      string    `toml:"token,omitempty"`
	Admin      Admin     `toml:"admin"`
	LoggedInAt time.Time `toml:"logged_in_at,omitempty"`
}

// File is the on-disk session file.
type File struct {
	Active   string             `toml:"active"`
	Profiles map[string]Profile `toml:"profiles"`
}

// Store reads and writes the session file.
type Store struct {
	path string
	mu   sync.Mutex
}

// DefaultPath returns ~/.local/state/zayafka/session.toml, creating the
// directory if needed.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".local", "state", "zayafka")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.toml"), nil
}

// NewStore returns a Store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the file location.
func (s *Store) Path() string { return s.path }

// Load reads the session file. A missing file yields an empty File.
func (s *Store) Load() (File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (File, error) {
	var f File
	if _, err := toml.DecodeFile(s.path, &f); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return File{Profiles: map[string]Profile{}}, nil
		}
		return File{}, fmt.Errorf("reading %s: %w", s.path, err)
	}
	if f.Profiles == nil {
		f.Profiles = map[string]Profile{}
	}
	return f, nil
}

// Save writes f with owner-only permissions; it holds tokens.
func (s *Store) Save(f File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(f)
}

func (s *Store) save(f File) error {
	tmp := s.path + ".tmp"
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(out).Encode(f); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("encoding session file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, s.path)
}

// Login stores p under name and makes it the active profile.
func (s *Store) Login(name string, p Profile) error {
	if name == "" {
		return errors.New("profile name is required")
	}
	if p.Token == "" {
		return errors.New("token is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.load()
	if err != nil {
		return err
	}
	f.Profiles[name] = p
	f.Active = name
	return s.save(f)
}

// Logout clears the token of the named profile ("" = active). The profile's
// URL and admin details are kept so the next login can reuse them.
func (s *Store) Logout(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.load()
	if err != nil {
		return err
	}
	if name == "" {
		name = f.Active
	}
	p, ok := f.Profiles[name]
	if !ok {
		return nil
	}
	p.Token = ""
	f.Profiles[name] = p
	return s.save(f)
}

// Resolve returns the named profile ("" = active). ok is false when there
// is no such profile.
func (s *Store) Resolve(name string) (string, Profile, bool, error) {
	f, err := s.Load()
	if err != nil {
		return "", Profile{}, false, err
	}
	if name == "" {
		name = f.Active
	}
	if name == "" {
		return "", Profile{}, false, nil
	}
	p, ok := f.Profiles[name]
	return name, p, ok, nil
}

// FileSession is a Session backed by one profile of a Store. When the API
// rejects its token the token is cleared on disk as well.
type FileSession struct {
	store  *Store
	name   string
	logger *slog.Logger

	mu      sync.Mutex
	profile Profile
}

// Open loads the named profile ("" = active). A missing profile yields a
// session without a token, which Require rejects.
func Open(store *Store, name string, logger *slog.Logger) (*FileSession, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	resolved, p, _, err := store.Resolve(name)
	if err != nil {
		return nil, err
	}
	return &FileSession{store: store, name: resolved, profile: p, logger: logger}, nil
}

// Name returns the profile name, empty when none is active.
func (s *FileSession) Name() string { return s.name }

// Profile returns a copy of the loaded profile.
func (s *FileSession) Profile() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

func (s *FileSession) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.Token
}

// OnUnauthenticated forgets the token in memory and in the session file.
func (s *FileSession) OnUnauthenticated() {
	s.mu.Lock()
	had := s.profile.Token != ""
	s.profile.Token = ""
	s.mu.Unlock()
	if !had || s.name == "" {
		return
	}
	s.logger.Warn("session_expired", slog.String("profile", s.name))
	if err := s.store.Logout(s.name); err != nil {
		s.logger.Error("session_clear_failed", slog.String("profile", s.name), slog.String("err", err.Error()))
	}
}

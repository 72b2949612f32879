package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Options configures a Store.
type Options struct {
	// SessionsDir holds session records, job records, and output logs.
	SessionsDir string
	// WorkspacesDir holds per-session workspace directories.
	WorkspacesDir string
	// IdleTimeout is how long a session may sit idle before
	// CleanupIdleSessions removes it.
	IdleTimeout time.Duration
	// Log receives structured diagnostics. Nil uses slog.Default.
	Log *slog.Logger

	// now overrides the clock in tests.
	now func() time.Time
}

// Store manages the on-disk session and job state.
type Store struct {
	sessionsDir   string
	workspacesDir string
	idleTimeout   time.Duration
	log           *slog.Logger
	now           func() time.Time
}

// New creates a Store rooted at the configured directories.
func New(opts Options) *Store {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	now := opts.now
	if now == nil {
		now = time.Now
	}
	return &Store{
		sessionsDir:   opts.SessionsDir,
		workspacesDir: opts.WorkspacesDir,
		idleTimeout:   opts.IdleTimeout,
		log:           log,
		now:           now,
	}
}

func (s *Store) sessionDir(key string) string {
	return filepath.Join(s.sessionsDir, key)
}

func (s *Store) sessionPath(key string) string {
	return filepath.Join(s.sessionDir(key), "session.json")
}

func (s *Store) jobsDir(key string) string {
	return filepath.Join(s.sessionDir(key), "jobs")
}

func (s *Store) jobPath(key, jobID string) string {
	return filepath.Join(s.jobsDir(key), jobID+".json")
}

func (s *Store) outputPath(key, jobID string) string {
	return filepath.Join(s.jobsDir(key), jobID+".log")
}

// CredentialDir returns the session's opaque credential sink directory.
func (s *Store) CredentialDir(key string) string {
	return filepath.Join(s.sessionDir(key), ".claude")
}

// WorkspaceDir returns the session's workspace directory path.
func (s *Store) WorkspaceDir(key string) string {
	return filepath.Join(s.workspacesDir, key)
}

// EnsureWorkspace creates the session's workspace directory if missing.
func (s *Store) EnsureWorkspace(key string) (string, error) {
	dir := s.WorkspaceDir(key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create workspace dir: %w", err)
	}
	return dir, nil
}

// EnsureCredentialDir creates the session's credential sink if missing.
func (s *Store) EnsureCredentialDir(key string) (string, error) {
	dir := s.CredentialDir(key)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create credential dir: %w", err)
	}
	return dir, nil
}

// validateSessionKey rejects keys that would escape the sessions directory.
func validateSessionKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty", ErrInvalidSessionKey)
	}
	if strings.ContainsAny(key, "/\\") || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidSessionKey, key)
	}
	return nil
}

// writeRecord marshals v and atomically replaces path. The temp file gets a
// fresh random suffix per write so concurrent writers never collide; the
// final rename makes every read a point-in-time snapshot.
func writeRecord(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create record dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp record file: %w", err)
	}
	name := tmpFile.Name()
	_, err = tmpFile.Write(data)
	if err1 := tmpFile.Close(); err1 != nil && err == nil {
		err = err1
	}
	if err != nil {
		os.Remove(name)
		return fmt.Errorf("write temp record file: %w", err)
	}

	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("rename record file: %w", err)
	}

	return nil
}

// GetSession returns the session for key, or nil if it does not exist.
func (s *Store) GetSession(key string) (*Session, error) {
	if err := validateSessionKey(key); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.sessionPath(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session record: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("parse session record: %w", err)
	}
	return &session, nil
}

// CreateSession creates the session directory tree and writes a fresh
// session record.
func (s *Store) CreateSession(key string) (*Session, error) {
	if err := validateSessionKey(key); err != nil {
		return nil, err
	}

	for _, dir := range []string{s.sessionDir(key), s.jobsDir(key)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create session dir: %w", err)
		}
	}

	now := s.now().UTC()
	session := &Session{
		SessionKey:   key,
		CreatedAt:    now,
		LastActivity: now,
	}
	if err := writeRecord(s.sessionPath(key), session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetOrCreateSession returns the existing session for key or creates one.
func (s *Store) GetOrCreateSession(key string) (*Session, error) {
	session, err := s.GetSession(key)
	if err != nil {
		return nil, err
	}
	if session != nil {
		return session, nil
	}
	return s.CreateSession(key)
}

// UpdateSession records assistant activity: it stores the assistant session
// handle, bumps last activity, and increments the message count.
func (s *Store) UpdateSession(key, assistantSessionID string) (*Session, error) {
	session, err := s.GetSession(key)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, key)
	}

	if assistantSessionID != "" {
		session.AssistantSessionID = assistantSessionID
	}
	session.LastActivity = s.now().UTC()
	session.MessageCount++

	if err := writeRecord(s.sessionPath(key), session); err != nil {
		return nil, err
	}
	return session, nil
}

// SetAssistantSession stores the assistant's resume handle without
// counting a message. Used by the watcher when the transcript announces
// its session id.
func (s *Store) SetAssistantSession(key, assistantSessionID string) error {
	session, err := s.GetSession(key)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, key)
	}

	session.AssistantSessionID = assistantSessionID
	session.LastActivity = s.now().UTC()
	return writeRecord(s.sessionPath(key), session)
}

// SetActiveJob sets or clears the session's active job pointer and bumps
// last activity. Setting fails fast when a different job already holds the
// pointer.
func (s *Store) SetActiveJob(key, jobID string) error {
	session, err := s.GetSession(key)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, key)
	}

	if jobID != "" && session.ActiveJobID != "" && session.ActiveJobID != jobID {
		return fmt.Errorf("%w: %s", ErrActiveJobExists, session.ActiveJobID)
	}

	session.ActiveJobID = jobID
	session.LastActivity = s.now().UTC()
	return writeRecord(s.sessionPath(key), session)
}

// DeleteSession removes the session subtree. Removal is best-effort; errors
// are logged, not raised. The workspace directory is never touched here.
func (s *Store) DeleteSession(key string) {
	if err := validateSessionKey(key); err != nil {
		s.log.Warn("delete session", "session", key, "error", err)
		return
	}
	if err := os.RemoveAll(s.sessionDir(key)); err != nil {
		s.log.Warn("delete session", "session", key, "error", err)
	}
}

// DeleteWorkspace removes the session's workspace directory. This is a
// separate, explicit operation: workspaces hold user code and survive
// session deletion unless the caller opts in.
func (s *Store) DeleteWorkspace(key string) error {
	if err := validateSessionKey(key); err != nil {
		return err
	}
	if err := os.RemoveAll(s.WorkspaceDir(key)); err != nil {
		return fmt.Errorf("delete workspace: %w", err)
	}
	return nil
}

// ListSessions returns all sessions. A missing sessions root yields an
// empty list; unreadable or malformed entries are skipped.
func (s *Store) ListSessions() ([]Session, error) {
	entries, err := os.ReadDir(s.sessionsDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sessions dir: %w", err)
	}

	sessions := make([]Session, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		session, err := s.GetSession(entry.Name())
		if err != nil || session == nil {
			continue
		}
		sessions = append(sessions, *session)
	}
	return sessions, nil
}

// CleanupIdleSessions deletes sessions idle beyond the configured timeout
// and returns the removed keys.
func (s *Store) CleanupIdleSessions() ([]string, error) {
	sessions, err := s.ListSessions()
	if err != nil {
		return nil, err
	}

	cutoff := s.now().Add(-s.idleTimeout)
	removed := make([]string, 0)
	for _, session := range sessions {
		if session.LastActivity.After(cutoff) {
			continue
		}
		s.DeleteSession(session.SessionKey)
		removed = append(removed, session.SessionKey)
	}
	return removed, nil
}

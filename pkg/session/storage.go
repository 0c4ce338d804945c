package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	DefaultStorageFileName = ".evm-swap-sessions.json"
)

// Storage handles persistence of swap sessions
type Storage struct {
	filePath string
	mu       sync.RWMutex
	sessions map[string]*Session
}

// fileLayout represents the JSON structure for storage
type fileLayout struct {
	Sessions map[string]*Session `json:"sessions"`
}

// NewStorage creates a new storage instance
func NewStorage(filePath string) (*Storage, error) {
	if filePath == "" {
		// Default to home directory
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		filePath = filepath.Join(home, DefaultStorageFileName)
	}

	storage := &Storage{
		filePath: filePath,
		sessions: make(map[string]*Session),
	}

	// Load existing sessions if the file exists
	if err := storage.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load sessions: %w", err)
		}
	}

	return storage, nil
}

// load reads sessions from the storage file
func (s *Storage) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var layout fileLayout
	if err := json.Unmarshal(data, &layout); err != nil {
		return fmt.Errorf("failed to unmarshal sessions: %w", err)
	}

	s.sessions = layout.Sessions
	if s.sessions == nil {
		s.sessions = make(map[string]*Session)
	}

	return nil
}

// save writes sessions to the storage file; the caller must hold the lock
func (s *Storage) save() error {
	layout := fileLayout{
		Sessions: s.sessions,
	}

	data, err := json.MarshalIndent(layout, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sessions: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write to temporary file first, then rename for atomic write
	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write sessions: %w", err)
	}

	if err := os.Rename(tempFile, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Create adds a new session to storage
func (s *Storage) Create(sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sess.Name]; exists {
		return fmt.Errorf("session '%s' already exists", sess.Name)
	}

	s.sessions[sess.Name] = sess
	return s.save()
}

// Get retrieves a session by name
func (s *Storage) Get(name string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, exists := s.sessions[name]
	if !exists {
		return nil, fmt.Errorf("session '%s' not found", name)
	}

	return sess, nil
}

// Update modifies an existing session
func (s *Storage) Update(sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sess.Name]; !exists {
		return fmt.Errorf("session '%s' not found", sess.Name)
	}

	s.sessions[sess.Name] = sess
	return s.save()
}

// Delete removes a session from storage
func (s *Storage) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[name]; !exists {
		return fmt.Errorf("session '%s' not found", name)
	}

	delete(s.sessions, name)
	return s.save()
}

// List returns all sessions
func (s *Storage) List() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}

	return sessions
}

// ListByStatus returns sessions filtered by status
func (s *Storage) ListByStatus(status Status) []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*Session, 0)
	for _, sess := range s.sessions {
		if sess.Status == status {
			sessions = append(sessions, sess)
		}
	}

	return sessions
}

// Exists checks if a session with the given name exists
func (s *Storage) Exists(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.sessions[name]
	return exists
}

// Count returns the total number of sessions
func (s *Storage) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

// GetFilePath returns the storage file path
func (s *Storage) GetFilePath() string {
	return s.filePath
}

package state

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileState represents the state of a single converted source file
type FileState struct {
	MTime  int64  `json:"mtime"`
	Hash   string `json:"hash"`
	Output string `json:"output"`
	// Format is the output format the source was last converted to
	Format string `json:"format"`
}

// State maps source paths to their last conversion. It is safe for
// concurrent use.
type State struct {
	mu    sync.Mutex
	Files map[string]*FileState `json:"files"`
}

// NewState creates a new empty state
func NewState() *State {
	return &State{
		Files: make(map[string]*FileState),
	}
}

// Load reads state from the state file
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return nil, err
	}

	state := NewState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to parse state: %w", err)
	}

	if state.Files == nil {
		state.Files = make(map[string]*FileState)
	}

	return state, nil
}

// Save writes state to the state file
func (s *State) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	s.mu.Lock()
	data, err := json.MarshalIndent(s, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}

// ComputeHash computes SHA256 hash of a file
func ComputeHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("sha256:%x", h.Sum(nil)), nil
}

// HasChanged reports whether path needs converting to format. A file is
// unchanged when it was last converted to the same format, its output
// still exists, and its mtime or, failing that, its hash matches.
func (s *State) HasChanged(path, format string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}

	mtime := info.ModTime().Unix()

	s.mu.Lock()
	fileState, exists := s.Files[path]
	s.mu.Unlock()
	if !exists || fileState.Format != format {
		return true, nil
	}
	if fileState.Output != "" {
		if _, err := os.Stat(fileState.Output); os.IsNotExist(err) {
			return true, nil
		}
	}

	// Fast path: check mtime first
	if mtime == fileState.MTime {
		return false, nil
	}

	// mtime changed, compute hash to check for actual content changes
	hash, err := ComputeHash(path)
	if err != nil {
		return false, err
	}

	return hash != fileState.Hash, nil
}

// Update records a conversion of path to output in format
func (s *State) Update(path, output, format string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	hash, err := ComputeHash(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Files[path] = &FileState{
		MTime:  info.ModTime().Unix(),
		Hash:   hash,
		Output: output,
		Format: format,
	}

	return nil
}

// Get returns the recorded state of path
func (s *State) Get(path string) (FileState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fileState, ok := s.Files[path]
	if !ok {
		return FileState{}, false
	}
	return *fileState, true
}

// Prune forgets every source for which keep returns false and returns the
// forgotten paths
func (s *State) Prune(keep func(path string) bool) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []string
	for path := range s.Files {
		if !keep(path) {
			delete(s.Files, path)
			removed = append(removed, path)
		}
	}
	return removed
}

// GetMTime returns the modification time for a file
func (s *State) GetMTime(path string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fileState, exists := s.Files[path]; exists {
		return time.Unix(fileState.MTime, 0)
	}
	return time.Time{}
}

package state

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestNewState(t *testing.T) {
	s := NewState()

	if s.Files == nil {
		t.Error("Files map should be initialized")
	}
	if len(s.Files) != 0 {
		t.Error("Files map should be empty")
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	statePath := filepath.Join(tmpDir, "state.json")

	state := NewState()
	state.Files["post.bbcode"] = &FileState{
		MTime:  123456789,
		Hash:   "sha256:abc123",
		Output: "post.md",
		Format: "markdown",
	}

	if err := state.Save(statePath); err != nil {
		t.Fatalf("Failed to save state: %v", err)
	}

	loaded, err := Load(statePath)
	if err != nil {
		t.Fatalf("Failed to load state: %v", err)
	}

	if len(loaded.Files) != 1 {
		t.Errorf("Expected 1 file, got %d", len(loaded.Files))
	}

	fileState, ok := loaded.Get("post.bbcode")
	if !ok {
		t.Fatal("File state not found")
	}
	if fileState.MTime != 123456789 {
		t.Errorf("MTime mismatch: got %d, want 123456789", fileState.MTime)
	}
	if fileState.Hash != "sha256:abc123" {
		t.Errorf("Hash mismatch: got %s, want sha256:abc123", fileState.Hash)
	}
	if fileState.Output != "post.md" {
		t.Errorf("Output mismatch: got %s, want post.md", fileState.Output)
	}
	if fileState.Format != "markdown" {
		t.Errorf("Format mismatch: got %s, want markdown", fileState.Format)
	}
}

func TestLoadNonExistent(t *testing.T) {
	tmpDir := t.TempDir()
	statePath := filepath.Join(tmpDir, "nonexistent.json")

	state, err := Load(statePath)
	if err != nil {
		t.Fatalf("Load should not error on missing file: %v", err)
	}

	if state == nil {
		t.Fatal("State should not be nil")
	}
	if len(state.Files) != 0 {
		t.Error("State should be empty")
	}
}

func TestLoadCorrupt(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(statePath, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(statePath); err == nil {
		t.Error("Expected error for corrupt state file")
	}
}

func TestComputeHash(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")

	if err := os.WriteFile(testFile, []byte("Hello, World!"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	hash1, err := ComputeHash(testFile)
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}
	if len(hash1) < 7 || hash1[:7] != "sha256:" {
		t.Errorf("Hash should start with 'sha256:', got %s", hash1)
	}

	hash2, err := ComputeHash(testFile)
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}
	if hash1 != hash2 {
		t.Error("Hash should be consistent for same content")
	}

	if err := os.WriteFile(testFile, []byte("Different content"), 0644); err != nil {
		t.Fatalf("Failed to update test file: %v", err)
	}
	hash3, err := ComputeHash(testFile)
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}
	if hash1 == hash3 {
		t.Error("Hash should be different for different content")
	}

	if _, err := ComputeHash(filepath.Join(tmpDir, "missing")); err == nil {
		t.Error("ComputeHash should fail for a missing file")
	}
}

func TestHasChanged(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.bbcode")

	if err := os.WriteFile(testFile, []byte("Initial content"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	state := NewState()

	changed, err := state.HasChanged(testFile, "markdown")
	if err != nil {
		t.Fatalf("HasChanged failed: %v", err)
	}
	if !changed {
		t.Error("New file should be marked as changed")
	}

	if err := state.Update(testFile, "", "markdown"); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	changed, err = state.HasChanged(testFile, "markdown")
	if err != nil {
		t.Fatalf("HasChanged failed: %v", err)
	}
	if changed {
		t.Error("Unchanged file should not be marked as changed")
	}

	changed, err = state.HasChanged(testFile, "html")
	if err != nil {
		t.Fatalf("HasChanged failed: %v", err)
	}
	if !changed {
		t.Error("File converted to another format should be marked as changed")
	}

	// Touch file (change mtime but not content)
	time.Sleep(1100 * time.Millisecond) // 1 second mtime resolution on some filesystems
	newTime := time.Now()
	if err := os.Chtimes(testFile, newTime, newTime); err != nil {
		t.Fatalf("Failed to touch file: %v", err)
	}

	changed, err = state.HasChanged(testFile, "markdown")
	if err != nil {
		t.Fatalf("HasChanged failed after touch: %v", err)
	}
	if changed {
		t.Error("File with only mtime change should not be marked as changed")
	}

	time.Sleep(1100 * time.Millisecond)
	if err := os.WriteFile(testFile, []byte("New content"), 0644); err != nil {
		t.Fatalf("Failed to update file: %v", err)
	}

	changed, err = state.HasChanged(testFile, "markdown")
	if err != nil {
		t.Fatalf("HasChanged failed after content change: %v", err)
	}
	if !changed {
		t.Error("File with content change should be marked as changed")
	}
}

func TestHasChangedMissingOutput(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "a.bbcode")
	out := filepath.Join(tmpDir, "a.md")

	for _, path := range []string{src, out} {
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	state := NewState()
	if err := state.Update(src, out, "markdown"); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if changed, _ := state.HasChanged(src, "markdown"); changed {
		t.Error("File with output in place should not be marked as changed")
	}

	if err := os.Remove(out); err != nil {
		t.Fatal(err)
	}
	if changed, _ := state.HasChanged(src, "markdown"); !changed {
		t.Error("File whose output was removed should be marked as changed")
	}
}

func TestUpdate(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.bbcode")

	if err := os.WriteFile(testFile, []byte("Test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	state := NewState()

	if err := state.Update(testFile, "test.md", "markdown"); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fileState := state.Files[testFile]
	if fileState == nil {
		t.Fatal("File state not found after update")
	}
	if fileState.MTime == 0 {
		t.Error("MTime should be set")
	}
	if fileState.Hash == "" {
		t.Error("Hash should be set")
	}
	if fileState.Output != "test.md" {
		t.Errorf("Output mismatch: got %s, want test.md", fileState.Output)
	}

	if err := state.Update(filepath.Join(tmpDir, "missing"), "", "markdown"); err == nil {
		t.Error("Update should fail for a missing file")
	}
}

func TestUpdateConcurrent(t *testing.T) {
	tmpDir := t.TempDir()
	state := NewState()

	var wg sync.WaitGroup
	for i := range 20 {
		path := filepath.Join(tmpDir, string(rune('a'+i))+".bbcode")
		if err := os.WriteFile(path, []byte{byte(i)}, 0644); err != nil {
			t.Fatal(err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := state.Update(path, "", "markdown"); err != nil {
				t.Errorf("Update failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if len(state.Files) != 20 {
		t.Errorf("Expected 20 files, got %d", len(state.Files))
	}
}

func TestPrune(t *testing.T) {
	state := NewState()
	state.Files["keep.bbcode"] = &FileState{}
	state.Files["gone.bbcode"] = &FileState{}

	removed := state.Prune(func(path string) bool { return path == "keep.bbcode" })

	if len(removed) != 1 || removed[0] != "gone.bbcode" {
		t.Errorf("Expected gone.bbcode to be pruned, got %v", removed)
	}
	if _, ok := state.Get("keep.bbcode"); !ok {
		t.Error("keep.bbcode should remain")
	}
}

func TestGetMTime(t *testing.T) {
	state := NewState()

	mtime := state.GetMTime("nonexistent.txt")
	if !mtime.IsZero() {
		t.Error("MTime for non-existent file should be zero")
	}

	state.Files["test.txt"] = &FileState{
		MTime: 1234567890,
		Hash:  "sha256:test",
	}

	mtime = state.GetMTime("test.txt")
	if mtime.Unix() != 1234567890 {
		t.Errorf("MTime mismatch: got %d, want 1234567890", mtime.Unix())
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	statePath := filepath.Join(tmpDir, "nested", "dir", "state.json")

	state := NewState()
	state.Files["test.bbcode"] = &FileState{
		MTime: 123,
		Hash:  "sha256:test",
	}

	if err := state.Save(statePath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(statePath); os.IsNotExist(err) {
		t.Error("State file was not created")
	}
}

package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCanonicalizePath(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "neuralrag-paths-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tempDir) })

	testFile := filepath.Join(tempDir, "subdir", "test.go")
	if err := os.MkdirAll(filepath.Dir(testFile), 0755); err != nil {
		t.Fatalf("Failed to create subdir: %v", err)
	}
	if err := os.WriteFile(testFile, []byte("package test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	canonical, err := CanonicalizePath(testFile, tempDir)
	if err != nil {
		t.Fatalf("CanonicalizePath failed: %v", err)
	}

	expected := "subdir/test.go"
	if canonical != expected {
		t.Errorf("Expected %s, got %s", expected, canonical)
	}
}

func TestCanonicalizePathNonexistentFile(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "neuralrag-paths-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tempDir) })

	missing := filepath.Join(tempDir, "missing", "file.go")
	canonical, err := CanonicalizePath(missing, tempDir)
	if err != nil {
		t.Fatalf("CanonicalizePath failed on a not-yet-existing file: %v", err)
	}
	if canonical != "missing/file.go" {
		t.Errorf("Expected missing/file.go, got %s", canonical)
	}
}

func TestNormalizePath(t *testing.T) {
	result := NormalizePath("path/to/file")
	expected := "path/to/file"
	if result != expected {
		t.Errorf("NormalizePath(path/to/file): expected %s, got %s", expected, result)
	}
}

func TestJoinRepoPath(t *testing.T) {
	result := JoinRepoPath("/repo/root", "path/to/file.go")
	expected := filepath.Join("/repo/root", "path", "to", "file.go")
	if result != expected {
		t.Errorf("JoinRepoPath: expected %s, got %s", expected, result)
	}
}

func TestIsWithinRepo(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "neuralrag-paths-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tempDir) })

	testFile := filepath.Join(tempDir, "subdir", "test.go")
	if err := os.MkdirAll(filepath.Dir(testFile), 0755); err != nil {
		t.Fatalf("Failed to create subdir: %v", err)
	}
	if err := os.WriteFile(testFile, []byte("package test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if !IsWithinRepo(testFile, tempDir) {
		t.Error("Expected file to be within repo")
	}

	outsideFile := filepath.Join(os.TempDir(), "outside.go")
	if IsWithinRepo(outsideFile, tempDir) {
		t.Error("Expected file outside repo to return false")
	}
}

func TestJoinRepoPathHandlesMixedSeparators(t *testing.T) {
	result := JoinRepoPath("/repo/root", "path\\to\\file.go")
	if !strings.HasSuffix(result, filepath.Join("path", "to", "file.go")) {
		t.Errorf("JoinRepoPath should normalize backslashes, got %s", result)
	}
}

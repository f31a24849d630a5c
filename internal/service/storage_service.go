package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"invoice-parser/internal/domain"
)

// LocalFileStore keeps each conversation's files under its own directory
// beneath the upload root. Files are written once on upload and read-only
// afterwards; cleanup is external.
type LocalFileStore struct {
	root   string
	logger domain.Logger
}

// NewLocalFileStore creates a file store rooted at the upload path
func NewLocalFileStore(root string, logger domain.Logger) *LocalFileStore {
	return &LocalFileStore{root: root, logger: logger}
}

// Save writes an uploaded file under the conversation directory and
// returns its absolute-ish stored path.
func (s *LocalFileStore) Save(conversationID, filename string, r io.Reader) (string, error) {
	cleaned, err := safeName(filename)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, conversationID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create conversation directory: %w", err)
	}

	path := filepath.Join(dir, cleaned)
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	s.logger.Debug("Stored upload", "conversation_id", conversationID, "file", cleaned)
	return path, nil
}

// Resolve maps a conversation-scoped filename to its stored path,
// rejecting names that would escape the conversation directory.
func (s *LocalFileStore) Resolve(conversationID, filename string) (string, error) {
	cleaned, err := safeName(filename)
	if err != nil {
		return "", err
	}
	if _, err := safeName(conversationID); err != nil {
		return "", err
	}

	path := filepath.Join(s.root, conversationID, cleaned)
	if _, err := os.Stat(path); err != nil {
		return "", domain.ErrFileNotFound
	}
	return path, nil
}

// safeName rejects path components that could traverse outside the store.
func safeName(name string) (string, error) {
	cleaned := filepath.Base(strings.TrimSpace(name))
	if cleaned == "" || cleaned == "." || cleaned == ".." || strings.ContainsAny(cleaned, `/\`) {
		return "", domain.ErrInvalidFile
	}
	return cleaned, nil
}

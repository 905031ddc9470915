package provider

import (
	"os"
	"path/filepath"
	"strings"
)

// FSProvider reads legacy sources from the local file system
type FSProvider struct {
	rootPath string
}

// NewFSProvider creates a new file system provider rooted at rootPath
func NewFSProvider(rootPath string) *FSProvider {
	return &FSProvider{
		rootPath: strings.TrimSuffix(rootPath, "/"),
	}
}

// ReadFile reads file content as bytes
func (p *FSProvider) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(p.getFullPath(path))
}

// Exists checks if a file or directory exists
func (p *FSProvider) Exists(path string) (bool, error) {
	_, err := os.Stat(p.getFullPath(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// getFullPath resolves relative paths against the root; absolute paths are kept
func (p *FSProvider) getFullPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if path == "." || path == "" || p.rootPath == "" {
		return path
	}
	return filepath.Join(p.rootPath, path)
}

// GetBasePath returns the base path for this provider
func (p *FSProvider) GetBasePath() string {
	return p.rootPath
}

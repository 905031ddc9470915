package provider

import (
	"fmt"
	"io/fs"
)

// FakeProvider serves file contents from memory, for tests
type FakeProvider struct {
	content map[string][]byte
	failing map[string]error
}

// NewFakeProvider creates an empty fake provider
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		content: make(map[string][]byte),
		failing: make(map[string]error),
	}
}

// AddFile registers a text file
func (p *FakeProvider) AddFile(path, content string) {
	p.content[path] = []byte(content)
}

// AddRawFile registers a file with arbitrary bytes
func (p *FakeProvider) AddRawFile(path string, content []byte) {
	p.content[path] = content
}

// FailOn makes every read of path return err
func (p *FakeProvider) FailOn(path string, err error) {
	p.failing[path] = err
}

// ReadFile returns the registered content or fs.ErrNotExist
func (p *FakeProvider) ReadFile(path string) ([]byte, error) {
	if err, ok := p.failing[path]; ok {
		return nil, err
	}
	content, ok := p.content[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, fs.ErrNotExist)
	}
	return content, nil
}

// Exists reports whether path was registered
func (p *FakeProvider) Exists(path string) (bool, error) {
	_, ok := p.content[path]
	return ok, nil
}

// GetBasePath returns "/"
func (p *FakeProvider) GetBasePath() string {
	return "/"
}

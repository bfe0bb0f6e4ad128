package classify

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// ErrSyntax marks a best-effort parse that failed. Callers must not treat it
// as fatal: the renderer falls back to a blanket wildcard re-export for the
// affected module.
var ErrSyntax = errors.New("syntax error")

// Classifier extracts the public export surface of one source dialect.
// Implementations recognize exports at module top level only; nothing inside
// function bodies or nested blocks counts.
type Classifier interface {
	// Classify parses src and returns the module's ExportSet. The path is
	// used for error messages only. A failed parse returns an error
	// wrapping ErrSyntax.
	Classify(path string, src []byte) (*ExportSet, error)

	// Extensions returns the file extensions this classifier handles,
	// with the leading dot.
	Extensions() []string

	// Dialect returns a short identifier for logs ("script", "typed",
	// "component").
	Dialect() string
}

// Registry routes classification requests to the classifier registered for a
// file's extension.
type Registry struct {
	mu          sync.RWMutex
	classifiers map[string]Classifier
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{classifiers: make(map[string]Classifier)}
}

// DefaultRegistry returns a registry with the three stock dialects: plain
// script (.js), typed script (.ts), and component syntax (.jsx, .tsx).
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewScriptClassifier())
	r.Register(NewTypedClassifier())
	r.Register(NewComponentClassifier())
	return r
}

// Register adds a classifier for each of its extensions, replacing any
// previous registration.
func (r *Registry) Register(c Classifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range c.Extensions() {
		r.classifiers[normalizeExt(ext)] = c
	}
}

// For returns the classifier for path's extension, or nil if none is
// registered.
func (r *Registry) For(path string) Classifier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.classifiers[normalizeExt(filepath.Ext(path))]
}

// Handles reports whether path's extension has a registered classifier.
func (r *Registry) Handles(path string) bool {
	return r.For(path) != nil
}

// Classify routes src to the classifier for path's extension.
func (r *Registry) Classify(path string, src []byte) (*ExportSet, error) {
	c := r.For(path)
	if c == nil {
		return nil, fmt.Errorf("no classifier for extension %q", filepath.Ext(path))
	}
	return c.Classify(path, src)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

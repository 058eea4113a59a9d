package lang

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-enry/go-enry/v2"
)

// Registry finds the service for a document by language id, file
// extension or content.
type Registry struct {
	mu         sync.RWMutex
	services   map[string]Service
	extensions map[string]string
}

func NewRegistry(services ...Service) *Registry {
	r := &Registry{
		services:   make(map[string]Service),
		extensions: make(map[string]string),
	}
	for _, s := range services {
		r.Register(s)
	}
	return r
}

// Register adds a service under its name and aliases and claims its
// extensions.
func (r *Registry) Register(s Service) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info := s.Info()
	r.services[strings.ToLower(info.Name)] = s
	for _, alias := range info.Aliases {
		r.services[strings.ToLower(alias)] = s
	}
	for _, ext := range info.Extensions {
		r.extensions[normalizeExt(ext)] = strings.ToLower(info.Name)
	}
}

// SetExtensions maps more file extensions to a registered language.
func (r *Registry) SetExtensions(name string, exts []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(name)
	if _, ok := r.services[key]; !ok {
		return fmt.Errorf("unknown language %q", name)
	}
	for _, ext := range exts {
		r.extensions[normalizeExt(ext)] = key
	}
	return nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Lookup finds a service by name, alias or editor language id.
func (r *Registry) Lookup(name string) (Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.services[strings.ToLower(name)]
	return s, ok
}

// Detect picks the service for a file: by its extension first, then by the
// language go-enry detects from its name and content.
func (r *Registry) Detect(path string, content []byte) (Service, bool) {
	r.mu.RLock()
	name, ok := r.extensions[strings.ToLower(filepath.Ext(path))]
	r.mu.RUnlock()
	if ok {
		return r.Lookup(name)
	}

	detected := enry.GetLanguage(filepath.Base(path), content)
	if detected == "" {
		return nil, false
	}
	return r.Lookup(detected)
}

// Resolve picks a service for an editor document: the language id when it
// is known, otherwise detection from the path.
func (r *Registry) Resolve(languageID, path string, content []byte) (Service, bool) {
	if languageID != "" {
		if s, ok := r.Lookup(languageID); ok {
			return s, true
		}
	}
	return r.Detect(path, content)
}

// Names returns the primary names of all registered languages.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]bool{}
	var names []string
	for _, s := range r.services {
		name := s.Info().Name
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

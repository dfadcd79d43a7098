package extractor

import (
	"strings"
	"sync"
)

// Constructor is a function that creates a new Extractor instance.
type Constructor func() Extractor

// registry manages registration of extractors by file extension.
type registry struct {
	mu           sync.Mutex
	constructors map[string]Constructor // extension -> constructor
	initialized  map[string]Extractor   // cache of initialized extractors
}

var globalRegistry = &registry{
	constructors: make(map[string]Constructor),
	initialized:  make(map[string]Extractor),
}

// Register registers an extractor constructor for specific file extensions.
// Extensions should include the dot prefix (e.g., ".pdf", ".txt").
func Register(extensions []string, constructor Constructor) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	for _, ext := range extensions {
		globalRegistry.constructors[strings.ToLower(ext)] = constructor
	}
}

// Get returns an extractor for the given file extension.
// The extension should include the dot prefix (e.g., ".pdf").
// Returns nil and false if no extractor is registered for the extension.
func Get(extension string) (Extractor, bool) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	ext := strings.ToLower(extension)
	if e, ok := globalRegistry.initialized[ext]; ok {
		return e, true
	}
	constructor, ok := globalRegistry.constructors[ext]
	if !ok {
		return nil, false
	}
	e := constructor()
	globalRegistry.initialized[ext] = e
	return e, true
}

// RegisteredExtensions returns all registered file extensions.
func RegisteredExtensions() []string {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	extensions := make([]string, 0, len(globalRegistry.constructors))
	for ext := range globalRegistry.constructors {
		extensions = append(extensions, ext)
	}
	return extensions
}

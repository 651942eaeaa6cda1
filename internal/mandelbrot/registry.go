package mandelbrot

import (
	"fmt"
	"sort"
	"sync"
)

// Registry names of the built-in renderers.
const (
	RendererFloat64 = "float64"
	RendererFloat32 = "float32"
	RendererFixed   = "fixed"
)

// RendererFactory creates renderers by name.
type RendererFactory interface {
	Create(name string) (Renderer, error)
	Get(name string) (Renderer, error)
	List() []string
	Register(name string, creator func() coreRenderer) error
	GetAll() map[string]Renderer
}

// DefaultFactory is a concurrency-safe registry that caches one Renderer
// per name.
type DefaultFactory struct {
	mu        sync.RWMutex
	creators  map[string]func() coreRenderer
	renderers map[string]Renderer
}

// NewDefaultFactory returns a factory with the float64, float32 and fixed
// renderers registered.
func NewDefaultFactory() *DefaultFactory {
	f := &DefaultFactory{
		creators:  make(map[string]func() coreRenderer),
		renderers: make(map[string]Renderer),
	}

	_ = f.Register(RendererFloat64, func() coreRenderer { return &FloatRenderer[float64]{name: RendererFloat64} })
	_ = f.Register(RendererFloat32, func() coreRenderer { return &FloatRenderer[float32]{name: RendererFloat32} })
	_ = f.Register(RendererFixed, func() coreRenderer { return &FixedRenderer{} })

	return f
}

// Register adds or replaces a renderer. A cached instance under the same
// name is dropped.
func (f *DefaultFactory) Register(name string, creator func() coreRenderer) error {
	if creator == nil {
		return fmt.Errorf("renderer %q: nil creator", name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.creators[name] = creator
	delete(f.renderers, name)
	return nil
}

// Create always returns a fresh, uncached Renderer.
func (f *DefaultFactory) Create(name string) (Renderer, error) {
	f.mu.RLock()
	creator, ok := f.creators[name]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown renderer: %s", name)
	}
	return NewRenderer(creator()), nil
}

// Get returns the cached Renderer for name, creating it on first use.
func (f *DefaultFactory) Get(name string) (Renderer, error) {
	f.mu.RLock()
	if r, exists := f.renderers[name]; exists {
		f.mu.RUnlock()
		return r, nil
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	if r, exists := f.renderers[name]; exists {
		return r, nil
	}
	creator, ok := f.creators[name]
	if !ok {
		return nil, fmt.Errorf("unknown renderer: %s", name)
	}
	r := NewRenderer(creator())
	f.renderers[name] = r
	return r, nil
}

// List returns the registered names in alphabetical order.
func (f *DefaultFactory) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.creators))
	for name := range f.creators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetAll returns every registered renderer, creating missing ones.
func (f *DefaultFactory) GetAll() map[string]Renderer {
	f.mu.Lock()
	defer f.mu.Unlock()

	for name, creator := range f.creators {
		if _, exists := f.renderers[name]; !exists {
			f.renderers[name] = NewRenderer(creator())
		}
	}

	result := make(map[string]Renderer, len(f.renderers))
	for name, r := range f.renderers {
		result[name] = r
	}
	return result
}

// MustGet is Get for initialisation code; it panics on unknown names.
func (f *DefaultFactory) MustGet(name string) Renderer {
	r, err := f.Get(name)
	if err != nil {
		panic(fmt.Sprintf("mandelbrot: required renderer not found: %s", name))
	}
	return r
}

// Has reports whether name is registered.
func (f *DefaultFactory) Has(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, exists := f.creators[name]
	return exists
}

package analytics

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"analyticsadmin/internal/errs"
)

// Factory builds a driver on first use
type Factory func() (Driver, error)

// Registry resolves drivers by name. Each factory runs at most once and the
// driver it returns is reused by every later Load.
type Registry struct {
	mu        sync.Mutex
	factories map[string]Factory
	instances map[string]Driver
}

func NewRegistry() *Registry {
	return &Registry{
		factories: map[string]Factory{},
		instances: map[string]Driver{},
	}
}

// Register adds or replaces the factory for name
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
	delete(r.instances, name)
}

func (r *Registry) RegisterDriver(driver Driver) {
	r.Register(driver.Name(), func() (Driver, error) { return driver, nil })
}

func (r *Registry) Load(name string) (Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(name)
}

func (r *Registry) load(name string) (Driver, error) {
	if driver, ok := r.instances[name]; ok {
		return driver, nil
	}
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: expecting one of (%s), %q given", errs.ErrInvalidDriver, strings.Join(r.names(), ", "), name)
	}
	driver, err := factory()
	if err != nil {
		return nil, fmt.Errorf("failed to build driver %s: %w", name, err)
	}
	r.instances[name] = driver
	return driver, nil
}

// Names returns the registered driver names in sorted order
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.names()
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Drivers builds every registered driver
func (r *Registry) Drivers() (map[string]Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	drivers := make(map[string]Driver, len(r.factories))
	for _, name := range r.names() {
		driver, err := r.load(name)
		if err != nil {
			return nil, err
		}
		drivers[name] = driver
	}
	return drivers, nil
}

// DriverOptions maps driver name to label for populating a selector
func (r *Registry) DriverOptions() (map[string]string, error) {
	drivers, err := r.Drivers()
	if err != nil {
		return nil, err
	}
	options := make(map[string]string, len(drivers))
	for name, driver := range drivers {
		options[name] = driver.Label()
	}
	return options, nil
}

// ForClass finds the driver whose options have the given class
func (r *Registry) ForClass(class string) (Driver, error) {
	drivers, err := r.Drivers()
	if err != nil {
		return nil, err
	}
	for _, name := range r.Names() {
		if drivers[name].OptionsClass() == class {
			return drivers[name], nil
		}
	}
	return nil, fmt.Errorf("%w: no driver handles options class %q", errs.ErrInvalidDriver, class)
}

package preset

import (
	"log"
	"sync"
	"sync/atomic"
)

// Settings exposes the generator-settings identifier of a generator. ok is
// false while the generator is still being constructed.
type Settings interface {
	SettingsID() (id ID, ok bool)
}

// SettingsFunc adapts a function to Settings.
type SettingsFunc func() (ID, bool)

func (f SettingsFunc) SettingsID() (ID, bool) { return f() }

// Static is a Settings value that is always initialised.
type Static ID

func (s Static) SettingsID() (ID, bool) { return ID(s), s != "" }

// Resolver resolves and caches the border radius for one generator instance.
// The zero value is unresolved forever; build one with NewResolver.
type Resolver struct {
	settings Settings
	logger   *log.Logger

	// radius holds the cached result: 0 until resolved, -1 when the
	// identifier is outside the latitude namespace.
	radius   atomic.Int64
	warnOnce sync.Once
}

const notApplicable = -1

func NewResolver(settings Settings, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(log.Writer(), "preset ", log.LstdFlags)
	}
	return &Resolver{settings: settings, logger: logger}
}

// Resolve returns the border radius. ok is false when the generator is not a
// latitude world or its settings are not initialised yet; only the first case
// is cached. Concurrent first calls may both compute the value, which is
// harmless because the result is the same.
func (r *Resolver) Resolve() (int, bool) {
	if r == nil {
		return 0, false
	}
	switch cached := r.radius.Load(); {
	case cached > 0:
		return int(cached), true
	case cached == notApplicable:
		return 0, false
	}
	if r.settings == nil {
		return 0, false
	}
	id, ok := r.settings.SettingsID()
	if !ok || id == "" {
		return 0, false
	}
	radius, matched := RadiusFor(id)
	if radius <= 0 {
		r.radius.Store(notApplicable)
		return 0, false
	}
	if !matched {
		r.warnOnce.Do(func() {
			r.logger.Printf("unknown latitude preset %q, falling back to %s (radius %d)", id, Default, radius)
		})
	}
	r.radius.Store(int64(radius))
	return radius, true
}

// ActiveRadiusBlocks returns the resolved radius or 0 when unresolved.
func (r *Resolver) ActiveRadiusBlocks() int {
	radius, ok := r.Resolve()
	if !ok {
		return 0
	}
	return radius
}

// SettingsID returns the identifier the resolver reads, if available.
func (r *Resolver) SettingsID() (ID, bool) {
	if r == nil || r.settings == nil {
		return "", false
	}
	return r.settings.SettingsID()
}

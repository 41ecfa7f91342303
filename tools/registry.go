// Package tools provides the capability registry the gate dispatches into.
// Every executor is a stand-in for an arbitrary integration; any of them can
// be swapped for a real one without touching the pipeline.
package tools

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Executor is the single capability a registered tool exposes
type Executor interface {
	// Name returns the tool name used for registry lookup
	Name() string
	// Description returns a human-readable description of the tool
	Description() string
	// Category returns the tool's category (weather, payment, file, ...)
	Category() string
	// Execute runs the tool. Argument-level problems are reported inside the
	// result map; returned errors mean the execution itself failed.
	Execute(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error)
}

// Info describes a registered tool for listing endpoints
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Registry maps tool names to executors. Seeded at startup, read-only for
// the dispatcher afterwards; safe for concurrent lookups.
type Registry struct {
	mu        sync.RWMutex
	executors map[string]Executor
	logger    *zap.Logger
}

// NewRegistry creates a new Registry
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		executors: make(map[string]Executor),
		logger:    logger,
	}
}

// Register adds an executor to the registry
func (r *Registry) Register(e Executor) error {
	if e.Name() == "" {
		return fmt.Errorf("executor has no name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.executors[e.Name()]; exists {
		return fmt.Errorf("tool already registered: %s", e.Name())
	}
	r.executors[e.Name()] = e
	r.logger.Debug("tool registered", zap.String("tool", e.Name()))
	return nil
}

// Get retrieves an executor by name
func (r *Registry) Get(name string) (Executor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.executors[name]
	return e, ok
}

// List returns info for all registered tools
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.executors))
	for _, e := range r.executors {
		infos = append(infos, Info{
			Name:        e.Name(),
			Description: e.Description(),
			Category:    e.Category(),
		})
	}
	return infos
}

// Count returns the number of registered tools
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.executors)
}

// SeedDefaults registers the full demo tool suite
func SeedDefaults(r *Registry, logger *zap.Logger) error {
	kv := NewKVStore()
	fs := NewSandboxFS()

	executors := []Executor{
		NewWeatherCurrent(nil, logger),
		NewWeatherForecast(nil, logger),
		NewPaymentProcess(),
		NewPaymentRefund(),
		NewFileRead(fs),
		NewFileWrite(fs),
		NewFileList(fs),
		NewWebSearch(),
		NewWebScrape(),
		NewEmailSend(),
		NewCalendarCreateEvent(),
		NewKVGet(kv),
		NewKVSet(kv),
	}

	for _, e := range executors {
		if err := r.Register(e); err != nil {
			return fmt.Errorf("failed to seed registry: %w", err)
		}
	}
	return nil
}

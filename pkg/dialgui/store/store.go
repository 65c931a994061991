// Package store provides the realtime key-value store dialgui binds widgets to.
package store

import (
	"errors"
	"path"
	"sync"

	"go.uber.org/zap"
)

// subscriberBuffer is the number of changes a subscriber may lag behind before Set blocks
const subscriberBuffer = 64

// ErrEmptyPath is returned when subscribing to or writing an empty path
var ErrEmptyPath = errors.New("store: empty path")

// Change is a single write observed at a path
type Change struct {
	Path  string
	Key   string
	Value interface{}
}

// Store is a path-scoped realtime store. A subscription receives the changes at
// all of its paths, one at a time, in the order they were written
type Store interface {
	Subscribe(paths ...string) (<-chan Change, error)
	Set(p string, value interface{}) error
	Get(p string) (interface{}, bool)
}

// Memory is an in-process Store
type Memory struct {
	logger *zap.SugaredLogger

	lock        sync.Mutex
	values      map[string]interface{}
	subscribers map[string][]chan Change
}

// NewMemory creates an empty in-process store
func NewMemory(logger *zap.SugaredLogger) *Memory {
	logger = logger.Named("store")

	m := &Memory{
		logger:      logger,
		values:      map[string]interface{}{},
		subscribers: map[string][]chan Change{},
	}

	logger.Debug("Created memory store instance")

	return m
}

// Subscribe returns a single channel receiving every subsequent change at any of paths
func (m *Memory) Subscribe(paths ...string) (<-chan Change, error) {
	for _, p := range paths {
		if p == "" {
			return nil, ErrEmptyPath
		}
	}

	ch := make(chan Change, subscriberBuffer)

	m.lock.Lock()
	for _, p := range paths {
		m.subscribers[p] = append(m.subscribers[p], ch)
	}
	m.lock.Unlock()

	m.logger.Debugw("Added subscriber", "paths", paths)

	return ch, nil
}

// Set writes value at p and notifies its subscribers
func (m *Memory) Set(p string, value interface{}) error {
	if p == "" {
		return ErrEmptyPath
	}

	change := Change{Path: p, Key: KeyOf(p), Value: value}

	// hold the lock while delivering so concurrent writers can't interleave per-path order
	m.lock.Lock()
	defer m.lock.Unlock()

	m.values[p] = value
	for _, sub := range m.subscribers[p] {
		sub <- change
	}

	return nil
}

// Get returns the last value written at p
func (m *Memory) Get(p string) (interface{}, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()

	value, ok := m.values[p]
	return value, ok
}

// KeyOf returns the last segment of a store path
func KeyOf(p string) string {
	return path.Base(path.Clean("/" + p))
}

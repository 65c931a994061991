package dialgui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// inputMap maps device input IDs (slider or button numbers) to store targets
type inputMap struct {
	m    map[int]string
	lock sync.Locker
}

func newInputMap() *inputMap {
	return &inputMap{
		m:    make(map[int]string),
		lock: &sync.Mutex{},
	}
}

func inputMapFromConfig(raw map[string]string) *inputMap {
	result := newInputMap()

	for idString, target := range raw {
		id, err := strconv.Atoi(strings.TrimSpace(idString))
		if err != nil {
			continue
		}

		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}

		result.set(id, target)
	}

	return result
}

func refreshInputMap(existing *inputMap, raw map[string]string) *inputMap {
	fresh := inputMapFromConfig(raw)
	if existing == nil {
		return fresh
	}

	existing.lock.Lock()
	defer existing.lock.Unlock()

	existing.m = fresh.m
	return existing
}

func (m *inputMap) get(id int) (string, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()

	target, ok := m.m[id]
	return target, ok
}

func (m *inputMap) set(id int, target string) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.m[id] = target
}

func (m *inputMap) len() int {
	m.lock.Lock()
	defer m.lock.Unlock()

	return len(m.m)
}

func (m *inputMap) String() string {
	m.lock.Lock()
	defer m.lock.Unlock()

	ids := make([]int, 0, len(m.m))
	for id := range m.m {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d:%s", id, m.m[id]))
	}

	return fmt.Sprintf("<%d inputs: %s>", len(ids), strings.Join(parts, ", "))
}

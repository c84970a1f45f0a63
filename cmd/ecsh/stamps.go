package main

import (
	"path/filepath"
	"time"

	"github.com/milk9111/dynecs/prefabs"
)

// stamps remembers the modification times of the files a session was built
// from, keyed by their path relative to prefabs.Dir.
type stamps map[string]time.Time

// seed records the current times of the scene and its scripts.
func (st stamps) seed(scene *prefabs.Scene, sceneName string) {
	names := []string{sceneName}
	for _, sc := range scene.Scripts {
		names = append(names, sc.Path)
	}
	for _, name := range names {
		key := filepath.ToSlash(name)
		if mod, ok := prefabs.ModTime(key); ok {
			st[key] = mod
		}
	}
}

// changed reports whether the watched file at path differs from the last
// recorded time and records the new one. Files that vanished, or sit outside
// prefabs.Dir, always count as changed.
func (st stamps) changed(path string) bool {
	rel, err := filepath.Rel(prefabs.Dir, path)
	if err != nil {
		return true
	}
	key := filepath.ToSlash(rel)
	mod, ok := prefabs.ModTime(key)
	if !ok {
		delete(st, key)
		return true
	}
	if last, seen := st[key]; seen && last.Equal(mod) {
		return false
	}
	st[key] = mod
	return true
}

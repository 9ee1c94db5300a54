package config

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed models/*.yaml
var modelFS embed.FS

var (
	cacheMu sync.RWMutex
	cache   = make(map[string]*table)
)

// sanitizeName maps a reported model name to a table file name:
// lowercased, with anything that is not alphanumeric, ".", "_" or "-"
// replaced by "_".
func sanitizeName(model string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(model) {
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '.' || c == '_' || c == '-' {
			b.WriteRune(c)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func loadTable(name string) (*table, error) {
	cacheMu.RLock()
	if t, ok := cache[name]; ok {
		cacheMu.RUnlock()
		return t, nil
	}
	cacheMu.RUnlock()

	data, err := modelFS.ReadFile("models/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("capability table %q not found: %w", name, err)
	}

	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing capability table %q: %w", name, err)
	}

	cacheMu.Lock()
	cache[name] = &t
	cacheMu.Unlock()

	return &t, nil
}

// Load resolves the capability table for the given projector model.
// When no table exists for the model, the generic table is used as is.
func Load(model string) (*Model, error) {
	generic, err := loadTable("all")
	if err != nil {
		return nil, err
	}

	name := sanitizeName(model)
	t, err := loadTable(name)
	if err != nil {
		return resolve("all", &table{}, generic), nil
	}
	return resolve(name, t, generic), nil
}

// Generic returns the union table of every known capability. Probing
// uses it as its candidate list.
func Generic() (*Model, error) {
	generic, err := loadTable("all")
	if err != nil {
		return nil, err
	}
	return resolve("all", &table{}, generic), nil
}

// Minimal returns the conservative table used before the projector's
// model is known.
func Minimal() (*Model, error) {
	generic, err := loadTable("all")
	if err != nil {
		return nil, err
	}
	minimal, err := loadTable("minimal")
	if err != nil {
		return nil, err
	}
	return resolve("minimal", minimal, generic), nil
}

// AvailableModels returns the names of all embedded capability tables,
// including "all" and "minimal".
func AvailableModels() ([]string, error) {
	entries, err := modelFS.ReadDir("models")
	if err != nil {
		return nil, fmt.Errorf("reading models directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") {
			names = append(names, strings.TrimSuffix(name, ".yaml"))
		}
	}
	sort.Strings(names)
	return names, nil
}

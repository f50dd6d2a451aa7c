package language

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the ast-grep language identifier and search pattern for one
// file extension.
type Config struct {
	Language string `yaml:"language"`
	Pattern  string `yaml:"pattern"`
}

// Entry binds an extension (with leading dot) to its Config.
type Entry struct {
	Extension string `yaml:"extension"`
	Config    `yaml:",inline"`
}

// Table is an ordered extension lookup. It is built once at startup and not
// mutated afterwards; Merge returns a new Table.
type Table struct {
	entries []Entry
	index   map[string]int
}

type fileFormat struct {
	Languages []Entry `yaml:"languages"`
}

// Default returns the built-in table: one representative pattern per language.
func Default() *Table {
	return NewTable([]Entry{
		{Extension: ".py", Config: Config{Language: "python", Pattern: "def $NAME($PARAMS): $$$"}},
		{Extension: ".js", Config: Config{Language: "javascript", Pattern: "function $NAME($PARAMS) { $$$ }"}},
		{Extension: ".ts", Config: Config{Language: "typescript", Pattern: "function $NAME($PARAMS) { $$$ }"}},
		{Extension: ".go", Config: Config{Language: "go", Pattern: "func $NAME($PARAMS) $RETURN { $$$ }"}},
		{Extension: ".rs", Config: Config{Language: "rust", Pattern: "fn $NAME($PARAMS) $RETURN { $$$ }"}},
		{Extension: ".java", Config: Config{Language: "java", Pattern: "class $NAME { $$$ }"}},
		{Extension: ".c", Config: Config{Language: "c", Pattern: "int $NAME($PARAMS) { $$$ }"}},
	})
}

// NewTable builds a table from entries. Later entries with the same extension
// replace earlier ones in place.
func NewTable(entries []Entry) *Table {
	t := &Table{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		ext := normalizeExt(e.Extension)
		e.Extension = ext
		if i, ok := t.index[ext]; ok {
			t.entries[i] = e
			continue
		}
		t.index[ext] = len(t.entries)
		t.entries = append(t.entries, e)
	}
	return t
}

// Resolve looks up the config for path by its final extension, case-insensitively.
func (t *Table) Resolve(path string) (Config, bool) {
	ext := Ext(path)
	if ext == "" {
		return Config{}, false
	}
	i, ok := t.index[ext]
	if !ok {
		return Config{}, false
	}
	return t.entries[i].Config, true
}

// Extensions lists the supported extensions in table order.
func (t *Table) Extensions() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Extension
	}
	return out
}

// Merge returns a table with overrides applied on top of t.
func (t *Table) Merge(overrides []Entry) *Table {
	all := make([]Entry, 0, len(t.entries)+len(overrides))
	all = append(all, t.entries...)
	all = append(all, overrides...)
	return NewTable(all)
}

// LoadFile reads language overrides from a YAML file of the form:
//
//	languages:
//	  - extension: .kt
//	    language: kotlin
//	    pattern: fun $NAME($$$PARAMS) { $$$ }
func LoadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open languages file: %w", err)
	}
	defer f.Close()

	var doc fileFormat
	if err := yaml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode languages file: %w", err)
	}

	for i, e := range doc.Languages {
		if strings.TrimSpace(e.Extension) == "" || e.Language == "" || e.Pattern == "" {
			return nil, fmt.Errorf("languages[%d]: extension, language and pattern are required", i)
		}
	}
	return doc.Languages, nil
}

// Ext returns the lowercased final extension of path including the dot, or ""
// for names without one. A leading dot alone (".bashrc") is not an extension.
func Ext(path string) string {
	base := filepath.Base(path)
	i := strings.LastIndex(base, ".")
	if i <= 0 || i == len(base)-1 {
		return ""
	}
	if strings.Trim(base[:i], ".") == "" {
		return ""
	}
	return strings.ToLower(base[i:])
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

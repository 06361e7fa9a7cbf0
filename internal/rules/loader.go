package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFromFS reads every .yaml/.yml file in fsys. A file may hold several
// rules separated by "---". Rule IDs must be unique across the whole FS,
// compared case-insensitively since Compile upper-cases them.
func LoadFromFS(fsys fs.FS) ([]RawRule, error) {
	var all []RawRule
	origin := make(map[string]string)
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAML(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		docs, err := decodeRules(data)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		for _, raw := range docs {
			id := strings.ToUpper(strings.TrimSpace(raw.ID))
			if prev, dup := origin[id]; dup {
				return fmt.Errorf("%s: rule %s already defined in %s", path, id, prev)
			}
			origin[id] = path
		}
		all = append(all, docs...)
		return nil
	})
	return all, err
}

// decodeRules decodes each YAML document of data. Unknown keys are
// rejected and documents without an id (comments only) are skipped.
func decodeRules(data []byte) ([]RawRule, error) {
	var out []RawRule
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	for i := 1; ; i++ {
		var raw RawRule
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		if raw.ID != "" {
			out = append(out, raw)
		}
	}
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zalepa/judgefee/roster"
)

// rosterFile is the calc input:
//
//	judges:
//	  - name: Dana Reyes
//	    level: FIG
//	    optionalRoutines: 4
//	    figFee: 10
type rosterFile struct {
	Judges []rosterEntry `yaml:"judges"`
}

// rosterEntry keeps every value as the raw text written in the file, so it
// goes through the same parsing as a form edit.
type rosterEntry struct {
	keys   []string
	values map[string]string
}

func (e *rosterEntry) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: judge must be a mapping of field to value", n.Line)
	}
	e.values = make(map[string]string, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: %s must be a single value", v.Line, k.Value)
		}
		if _, dup := e.values[k.Value]; !dup {
			e.keys = append(e.keys, k.Value)
		}
		e.values[k.Value] = v.Value
	}
	return nil
}

func readRoster(path string) ([]rosterEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseRoster(f)
}

func parseRoster(r io.Reader) ([]rosterEntry, error) {
	var rf rosterFile
	if err := yaml.NewDecoder(r).Decode(&rf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	return rf.Judges, nil
}

// applyRoster loads entries into store, appending a record for every entry
// after the first. Values are applied in field order, so a region is looked
// up before any rate written next to it. Keys that are not fields, or that
// the configuration turns off, are reported as warnings.
func applyRoster(store *roster.Store, seed roster.Seed, entries []rosterEntry) ([]string, error) {
	var warnings []string
	for i, entry := range entries {
		idx := 0
		if i > 0 {
			idx = store.Append(seed)
		}

		raw := make(map[roster.Field]string, len(entry.keys))
		for _, key := range entry.keys {
			f, ok := roster.ParseField(key)
			switch {
			case !ok:
				warnings = append(warnings, fmt.Sprintf("judge %d: unknown field %q", i+1, key))
			case !f.Enabled(store.Options()):
				warnings = append(warnings, fmt.Sprintf("judge %d: field %q is not used by this configuration", i+1, key))
			default:
				raw[f] = entry.values[key]
			}
		}

		for _, f := range roster.AllFields() {
			v, ok := raw[f]
			if !ok {
				continue
			}
			if err := store.Edit(idx, f, v); err != nil {
				return warnings, fmt.Errorf("judge %d: %w", i+1, err)
			}
		}
	}
	return warnings, nil
}

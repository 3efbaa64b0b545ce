package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// defaultGroupCols is used when a case does not configure its own
// grouping columns. These are the physical attributes assumed to
// identify a unit across re-postings.
var defaultGroupCols = []string{"name", "price", "age", "layout", "area"}

// CaseSetting describes one saved search: the search-result URL to walk
// and the columns used to collapse duplicate postings.
type CaseSetting struct {
	BaseURL   string   `yaml:"base_url"`
	GroupCols []string `yaml:"group_cols"`
}

// Settings is the parsed setting.yml file.
type Settings struct {
	Target map[string]CaseSetting `yaml:"target"`
}

// LoadSettings reads and parses the YAML case-settings file.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("settings: read %q: %w", path, err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("settings: parse %q: %w", path, err)
	}
	return &s, nil
}

// Case returns the setting for the named case. Unknown case names are an
// error: running against an unconfigured target is a setup mistake, not
// something to paper over.
func (s *Settings) Case(name string) (CaseSetting, error) {
	cs, ok := s.Target[name]
	if !ok {
		return CaseSetting{}, fmt.Errorf("settings: unknown case %q", name)
	}
	if cs.BaseURL == "" {
		return CaseSetting{}, fmt.Errorf("settings: case %q has no base_url", name)
	}
	if len(cs.GroupCols) == 0 {
		cs.GroupCols = defaultGroupCols
	}
	return cs, nil
}

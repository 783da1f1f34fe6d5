package fallback

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile is the YAML shape of a message override file:
//
//	messages:
//	  scheduling: "Our concierge will call you back to confirm."
//	  search: "Live search is down, answers may be stale."
type catalogFile struct {
	Messages map[string]string `yaml:"messages"`
}

// Load builds a responder from the built-in catalog overridden by the YAML
// file at path. Unknown operation names are rejected so a typo in the file
// fails startup instead of silently keeping the default.
func Load(path string) (*Responder, error) {
	r := NewResponder()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fallback catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse fallback catalog: %w", err)
	}

	for name, msg := range file.Messages {
		op := Op(name)
		if _, known := defaultMessages[op]; !known {
			return nil, fmt.Errorf("fallback catalog: unknown operation %q", name)
		}
		if msg == "" {
			return nil, fmt.Errorf("fallback catalog: empty message for %q", name)
		}
		r.messages[op] = msg
	}

	return r, nil
}

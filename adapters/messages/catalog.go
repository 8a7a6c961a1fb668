// Package messages provides the message catalog backing flash and error
// text, loaded from a yaml locale file with built-in defaults.
package messages

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/artpar/scaffold/ports"
)

// Catalog maps message keys to user-facing text. Unknown keys fall back
// to the key itself so a missing translation never breaks a response.
type Catalog struct {
	entries map[string]string
}

// Defaults returns the built-in English catalog.
func Defaults() *Catalog {
	return &Catalog{entries: map[string]string{
		"messages.create_success": "Record created successfully.",
		"messages.update_success": "Record updated successfully.",
		"messages.remove_success": "Record removed successfully.",
		"messages.action_success": "Action completed successfully.",
	}}
}

// Load reads a yaml locale file (flat key: text mapping) and merges it
// over the defaults.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	loaded := make(map[string]string)
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := Defaults()
	for k, v := range loaded {
		c.entries[k] = v
	}
	return c, nil
}

// Lookup returns the text for a key, falling back to the key itself.
func (c *Catalog) Lookup(key string) string {
	if text, ok := c.entries[key]; ok {
		return text
	}
	return key
}

// Ensure interface compliance.
var _ ports.MessageCatalog = (*Catalog)(nil)

package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/jogotesto/internal/storage"
	"github.com/pixil98/jogotesto/internal/world"
)

type WorldConfig struct {
	Path    string `json:"path"`
	Default string `json:"default"`
}

func (c *WorldConfig) validate() error {
	el := errors.NewErrorList()

	if c.Path == "" {
		el.Add(fmt.Errorf("world path is required"))
	} else if _, err := os.Stat(c.Path); err != nil {
		el.Add(fmt.Errorf("invalid world path %q: %w", c.Path, err))
	}

	if c.Default == "" {
		el.Add(fmt.Errorf("default world is required"))
	}

	return el.Err()
}

// BuildWorldSpec loads the world asset directory and returns the configured
// default description. Every match instantiates its own world from it.
func (c *WorldConfig) BuildWorldSpec() (*world.Spec, error) {
	store, err := storage.NewFileStore[*world.Spec](c.Path)
	if err != nil {
		return nil, fmt.Errorf("creating world store: %w", err)
	}

	spec := store.Get(storage.Identifier(c.Default))
	if spec == nil {
		return nil, fmt.Errorf("default world %q not found in %s", c.Default, c.Path)
	}

	return spec, nil
}

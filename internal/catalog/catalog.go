package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jscyril/crossfade_player/api"
	playerrors "github.com/jscyril/crossfade_player/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Catalog is the ordered list of tracks available for playback. Order defines
// playback order.
type Catalog struct {
	Tracks []api.TrackDescriptor `json:"tracks" yaml:"tracks"`
}

// New creates a catalog from descriptors
func New(tracks []api.TrackDescriptor) *Catalog {
	c := &Catalog{Tracks: make([]api.TrackDescriptor, len(tracks))}
	copy(c.Tracks, tracks)
	return c
}

// Load reads a catalog from a .json, .yaml or .yml file. The file holds
// either a bare list of descriptors or an object with a "tracks" key.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var tracks []api.TrackDescriptor
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		tracks, err = decodeJSON(data)
	case ".yaml", ".yml":
		tracks, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("%w: catalog %s", playerrors.ErrInvalidFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}

	for i, t := range tracks {
		if t.ResourceID == "" {
			return nil, fmt.Errorf("catalog entry %d (%q): missing filename", i, t.Name)
		}
		if t.Name == "" {
			tracks[i].Name = t.ResourceID
		}
	}
	return &Catalog{Tracks: tracks}, nil
}

func decodeJSON(data []byte) ([]api.TrackDescriptor, error) {
	var list []api.TrackDescriptor
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return c.Tracks, nil
}

func decodeYAML(data []byte) ([]api.TrackDescriptor, error) {
	var list []api.TrackDescriptor
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return c.Tracks, nil
}

// Save writes the catalog to path, choosing the encoding by extension
func (c *Catalog) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		return fmt.Errorf("%w: catalog %s", playerrors.ErrInvalidFormat, ext)
	}
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write catalog file: %w", err)
	}
	return nil
}

// Len returns the number of tracks
func (c *Catalog) Len() int {
	return len(c.Tracks)
}

// Prefix returns a copy of the first n tracks, or all of them if the catalog
// is shorter
func (c *Catalog) Prefix(n int) []api.TrackDescriptor {
	if n > len(c.Tracks) {
		n = len(c.Tracks)
	}
	if n < 0 {
		n = 0
	}
	out := make([]api.TrackDescriptor, n)
	copy(out, c.Tracks[:n])
	return out
}

// Find returns the descriptor with the given name
func (c *Catalog) Find(name string) (api.TrackDescriptor, error) {
	for _, t := range c.Tracks {
		if t.Name == name {
			return t, nil
		}
	}
	return api.TrackDescriptor{}, playerrors.ErrTrackNotFound
}

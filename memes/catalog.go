// Package memes loads and serves the static meme catalog. The catalog is
// read once at startup from a manifest file and never mutated afterwards;
// rooms draw from it through the Pick method.
package memes

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
)

const manifestName = "manifest.json"

type Meme struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Filename string `json:"filename"`
}

type Catalog struct {
	memes []Meme
}

func NewCatalog(memes []Meme) *Catalog {
	return &Catalog{memes: memes}
}

// Load reads the manifest from dir. The image files themselves are served
// statically and are not touched here.
func Load(dir string) (*Catalog, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		return nil, fmt.Errorf("read meme manifest: %w", err)
	}

	var memes []Meme
	if err := json.Unmarshal(data, &memes); err != nil {
		return nil, fmt.Errorf("parse meme manifest: %w", err)
	}

	return NewCatalog(memes), nil
}

func (c *Catalog) Size() int {
	return len(c.memes)
}

// Pick draws uniformly from the memes whose id is not in used. It reports
// false when every meme has been used (or the catalog is empty); resetting
// the used set is the caller's call.
func (c *Catalog) Pick(used map[string]bool) (Meme, bool) {
	available := make([]Meme, 0, len(c.memes))
	for _, m := range c.memes {
		if !used[m.ID] {
			available = append(available, m)
		}
	}

	if len(available) == 0 {
		return Meme{}, false
	}
	return available[rand.IntN(len(available))], true
}

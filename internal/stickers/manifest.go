// Package stickers serves the read-only sticker library: a TOML manifest in
// the sticker directory, a built-in emoji set when none exists, an in-memory
// search index and hot reload when the directory changes.
package stickers

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/journalapp/journal-server/pkg/domain"
)

// ManifestFile is the manifest's name inside the sticker directory.
const ManifestFile = "stickers.toml"

// Manifest is the on-disk description of the library.
//
//	[[category]]
//	id = "travel"
//	name = "Travel"
//
//	[[sticker]]
//	id = "plane"
//	name = "Paper plane"
//	category = "travel"
//	tags = ["flight", "trip"]
//	file = "travel/plane.png"
type Manifest struct {
	Categories []CategoryDef `toml:"category"`
	Stickers   []StickerDef  `toml:"sticker"`
}

// CategoryDef declares a category and its display name.
type CategoryDef struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

// StickerDef declares one sticker. Exactly one of File and Emoji is set.
type StickerDef struct {
	ID       string   `toml:"id"`
	Name     string   `toml:"name"`
	Category string   `toml:"category"`
	Tags     []string `toml:"tags"`
	File     string   `toml:"file"`
	Emoji    string   `toml:"emoji"`
}

// errNoManifest means the directory has no manifest and the built-ins apply.
var errNoManifest = errors.New("no sticker manifest")

// loadManifest decodes dir/stickers.toml.
func loadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errNoManifest
		}
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &m, nil
}

// catalog is a resolved, validated manifest.
type catalog struct {
	stickers   []domain.Sticker
	categories []domain.StickerCategory
}

// resolve validates m against dir. Invalid stickers are skipped and reported
// through warn so one bad entry does not hide the rest of the library.
func resolve(m *Manifest, dir string, warn func(msg string, args ...any)) catalog {
	names := make(map[string]string, len(m.Categories))
	order := make([]string, 0, len(m.Categories))
	for _, c := range m.Categories {
		id := c.ID
		if id == "" {
			id = domain.Slugify(c.Name)
		}
		if id == "" {
			warn("category without id or name skipped")
			continue
		}
		if _, dup := names[id]; dup {
			continue
		}
		name := c.Name
		if name == "" {
			name = id
		}
		names[id] = name
		order = append(order, id)
	}

	seen := make(map[string]bool, len(m.Stickers))
	counts := make(map[string]int)
	var out catalog
	for _, def := range m.Stickers {
		id := def.ID
		if id == "" {
			id = domain.Slugify(def.Name)
		}
		switch {
		case id == "":
			warn("sticker without id or name skipped")
			continue
		case seen[id]:
			warn("duplicate sticker id skipped", "id", id)
			continue
		case (def.File == "") == (def.Emoji == ""):
			warn("sticker needs exactly one of file or emoji", "id", id)
			continue
		}
		if def.File != "" {
			if err := checkFile(dir, def.File); err != nil {
				warn("sticker file unusable", "id", id, "error", err)
				continue
			}
		}

		category := def.Category
		if category == "" {
			category = "misc"
		}
		if _, ok := names[category]; !ok {
			names[category] = category
			order = append(order, category)
		}

		name := def.Name
		if name == "" {
			name = id
		}
		seen[id] = true
		counts[category]++
		out.stickers = append(out.stickers, domain.Sticker{
			ID:       id,
			Name:     name,
			Category: category,
			Tags:     def.Tags,
			File:     filepath.ToSlash(def.File),
			Emoji:    def.Emoji,
		})
	}

	for _, id := range order {
		if counts[id] == 0 {
			continue
		}
		out.categories = append(out.categories, domain.StickerCategory{ID: id, Name: names[id], Count: counts[id]})
	}
	return out
}

// checkFile rejects paths that leave dir or do not name a regular file.
func checkFile(dir, rel string) error {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path %q escapes the sticker directory", rel)
	}
	info, err := os.Stat(filepath.Join(dir, clean))
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%q is not a regular file", rel)
	}
	return nil
}

// Package catalog loads designer-authored kit loadouts from JSON. Each entry
// names one of the built-in kits and optionally overrides its numeric
// tuning; omitted fields keep the kits' documented defaults.
//
//go:generate go run emberveil/combat/cmd/schema --out ../../config/kits/catalog.schema.json
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"emberveil/combat/kit"
)

// ErrUnknownKit is returned when an entry or lookup names no known kit.
var ErrUnknownKit = errors.New("catalog: unknown kit")

// Kit names accepted in catalog entries.
const (
	KitBlade = "blade"
	KitFrost = "frost"
	KitVenom = "venom"
	KitBow   = "bow"
)

type source interface {
	Load() ([]byte, error)
	Path() string
}

type fileSource struct {
	path string
}

func (f fileSource) Load() ([]byte, error) {
	return os.ReadFile(f.path)
}

func (f fileSource) Path() string {
	return f.path
}

// EntryDocument is a single loadout as it appears on disk. The struct is
// exported so the schema generator can reflect over the configuration
// contract shared with designers.
type EntryDocument struct {
	ID  string `json:"id" jsonschema:"title=Loadout ID,description=Identifier the host selects a loadout by.,pattern=^[a-z0-9-]+$,minLength=1,required"`
	Kit string `json:"kit" jsonschema:"title=Kit Name,description=Built-in kit this loadout tunes.,enum=blade,enum=frost,enum=venom,enum=bow,required"`

	// Exactly the section matching Kit may be present; zero-valued fields
	// fall back to the kit defaults.
	Blade *kit.BladeConfig `json:"blade,omitempty" jsonschema:"title=Blade Tuning"`
	Frost *kit.FrostConfig `json:"frost,omitempty" jsonschema:"title=Frost Tuning"`
	Venom *kit.VenomConfig `json:"venom,omitempty" jsonschema:"title=Venom Tuning"`
	Bow   *kit.BowConfig   `json:"bow,omitempty" jsonschema:"title=Bow Tuning"`
}

// DefaultPaths returns the canonical catalog locations relative to the
// module root.
func DefaultPaths() []string {
	return []string{
		filepath.Join("config", "kits", "catalog.json"),
		filepath.Join("..", "config", "kits", "catalog.json"),
	}
}

// Resolver merges one or more catalog sources into a stable lookup table.
// Call Reload to pick up on-disk changes.
type Resolver struct {
	mu      sync.RWMutex
	sources []source
	entries map[string]EntryDocument
}

// Load constructs a Resolver from catalog file paths. Missing files are
// skipped so the default path list works from both the module root and
// subdirectories.
func Load(paths ...string) (*Resolver, error) {
	sources := make([]source, 0, len(paths))
	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		sources = append(sources, fileSource{path: trimmed})
	}
	return newResolver(sources...)
}

func newResolver(sources ...source) (*Resolver, error) {
	r := &Resolver{
		sources: append([]source(nil), sources...),
		entries: make(map[string]EntryDocument),
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-parses all catalog sources. Later sources override earlier ones
// to support local overlays during development.
func (r *Resolver) Reload() error {
	if r == nil {
		return nil
	}
	entries := make(map[string]EntryDocument)
	for _, src := range r.sources {
		data, err := src.Load()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("catalog: failed loading %s: %w", src.Path(), err)
		}
		documents, err := decodeEntries(data)
		if err != nil {
			return fmt.Errorf("catalog: failed parsing %s: %w", src.Path(), err)
		}
		seen := make(map[string]struct{}, len(documents))
		for _, doc := range documents {
			id := strings.TrimSpace(doc.ID)
			if id == "" {
				return fmt.Errorf("catalog: entry missing id in %s", src.Path())
			}
			if _, dup := seen[id]; dup {
				return fmt.Errorf("catalog: duplicate id %q in %s", id, src.Path())
			}
			seen[id] = struct{}{}
			if err := validateEntry(doc); err != nil {
				return fmt.Errorf("catalog: entry %q in %s: %w", id, src.Path(), err)
			}
			entries[id] = doc
		}
	}

	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()
	return nil
}

func validateEntry(doc EntryDocument) error {
	sections := map[string]bool{
		KitBlade: doc.Blade != nil,
		KitFrost: doc.Frost != nil,
		KitVenom: doc.Venom != nil,
		KitBow:   doc.Bow != nil,
	}
	if _, known := sections[doc.Kit]; !known {
		return fmt.Errorf("%w: %q", ErrUnknownKit, doc.Kit)
	}
	for name, present := range sections {
		if present && name != doc.Kit {
			return fmt.Errorf("entry tunes %q but names kit %q", name, doc.Kit)
		}
	}
	return nil
}

// Resolve returns the raw entry for a loadout ID.
func (r *Resolver) Resolve(id string) (EntryDocument, bool) {
	if r == nil {
		return EntryDocument{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	return entry, ok
}

// IDs returns the sorted loadout identifiers.
func (r *Resolver) IDs() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Build constructs the kit strategy for a loadout ID with its tuning
// applied. Unknown IDs report ErrUnknownKit.
func (r *Resolver) Build(id string) (kit.Strategy, error) {
	entry, ok := r.Resolve(id)
	if !ok {
		return nil, fmt.Errorf("%w: no loadout %q", ErrUnknownKit, id)
	}
	switch entry.Kit {
	case KitBlade:
		cfg := kit.BladeConfig{}
		if entry.Blade != nil {
			cfg = *entry.Blade
		}
		return kit.NewBlade(cfg), nil
	case KitFrost:
		cfg := kit.FrostConfig{}
		if entry.Frost != nil {
			cfg = *entry.Frost
		}
		return kit.NewFrost(cfg), nil
	case KitVenom:
		cfg := kit.VenomConfig{}
		if entry.Venom != nil {
			cfg = *entry.Venom
		}
		return kit.NewVenom(cfg), nil
	case KitBow:
		cfg := kit.BowConfig{}
		if entry.Bow != nil {
			cfg = *entry.Bow
		}
		return kit.NewBow(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKit, entry.Kit)
	}
}

// decodeEntries accepts either an array of entries or an object keyed by
// loadout ID.
func decodeEntries(data []byte) ([]EntryDocument, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	switch trimmed[0] {
	case '[':
		var entries []EntryDocument
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	case '{':
		var object map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &object); err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(object))
		for id := range object {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		entries := make([]EntryDocument, 0, len(ids))
		for _, id := range ids {
			var entry EntryDocument
			if err := json.Unmarshal(object[id], &entry); err != nil {
				return nil, fmt.Errorf("entry %q: %w", id, err)
			}
			if entry.ID == "" {
				entry.ID = id
			} else if entry.ID != id {
				return nil, fmt.Errorf("entry id %q does not match key %q", entry.ID, id)
			}
			entries = append(entries, entry)
		}
		return entries, nil
	default:
		return nil, fmt.Errorf("unexpected json token %q", string(trimmed[:1]))
	}
}

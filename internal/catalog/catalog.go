// Package catalog holds the static category tables and FAQ corpus. A
// Catalog is loaded once at startup and must not be mutated afterwards; it
// is passed explicitly to the components that read it.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Category pairs a category name with its comma-separated keyword string.
type Category struct {
	Name     string `yaml:"name" json:"name"`
	Keywords string `yaml:"keywords" json:"keywords"`
}

// Table is an ordered category table.
type Table []Category

func (t Table) Lookup(name string) (Category, bool) {
	for _, c := range t {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

func (t Table) Names() []string {
	names := make([]string, len(t))
	for i, c := range t {
		names[i] = c.Name
	}
	return names
}

type Entry struct {
	Question string `yaml:"q" json:"question"`
	Answer   string `yaml:"a" json:"answer"`
}

type FAQGroup struct {
	Category string  `yaml:"category" json:"category"`
	Entries  []Entry `yaml:"entries" json:"entries"`
}

type Catalog struct {
	General      Table
	Critical     Table
	CategoryFAQs []FAQGroup
	GeneralFAQs  []Entry
}

type document struct {
	Categories struct {
		General  Table `yaml:"general"`
		Critical Table `yaml:"critical"`
	} `yaml:"categories"`
	FAQs struct {
		Categories []FAQGroup `yaml:"categories"`
		General    []Entry    `yaml:"general"`
	} `yaml:"faqs"`
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

// Load reads a catalog file, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	c := &Catalog{
		General:      doc.Categories.General,
		Critical:     doc.Categories.Critical,
		CategoryFAQs: doc.FAQs.Categories,
		GeneralFAQs:  doc.FAQs.General,
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Catalog) validate() error {
	if len(c.General) == 0 && len(c.Critical) == 0 {
		return errors.New("catalog has no categories")
	}

	seen := make(map[string]string)
	for kind, table := range map[string]Table{"general": c.General, "critical": c.Critical} {
		for _, cat := range table {
			if strings.TrimSpace(cat.Name) == "" {
				return fmt.Errorf("%s category with empty name", kind)
			}
			if other, ok := seen[cat.Name]; ok {
				return fmt.Errorf("category %q appears in both %s and %s tables", cat.Name, other, kind)
			}
			seen[cat.Name] = kind
		}
	}

	return nil
}

// All returns general categories followed by critical ones.
func (c *Catalog) All() Table {
	all := make(Table, 0, len(c.General)+len(c.Critical))
	all = append(all, c.General...)
	return append(all, c.Critical...)
}

// Flatten returns every FAQ entry: category groups in order, general last.
func (c *Catalog) Flatten() []Entry {
	var entries []Entry
	for _, g := range c.CategoryFAQs {
		entries = append(entries, g.Entries...)
	}
	return append(entries, c.GeneralFAQs...)
}

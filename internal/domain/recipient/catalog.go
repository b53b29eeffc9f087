package recipient

import (
	"bytes"
	_ "embed"
	"fmt"
	"sort"

	"github.com/spf13/viper"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

type capitalEntry struct {
	UF   string `mapstructure:"uf"`
	City string `mapstructure:"city"`
}

type catalogFile struct {
	Organs          []string       `mapstructure:"organs"`
	Severities      []string       `mapstructure:"severities"`
	Professions     []string       `mapstructure:"professions"`
	MaritalStatuses []string       `mapstructure:"marital_statuses"`
	BloodTypes      []string       `mapstructure:"blood_types"`
	Capitals        []capitalEntry `mapstructure:"capitals"`
}

// Catalog holds the fixed lookup tables recipients are drawn from. It is
// built once and never modified; accessors hand out copies.
type Catalog struct {
	organs          []string
	severities      []string
	professions     []string
	maritalStatuses []string
	bloodTypes      []string
	capitals        map[string]string
}

// DefaultCatalog loads the tables compiled into the binary.
func DefaultCatalog() (*Catalog, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultCatalogYAML)); err != nil {
		return nil, fmt.Errorf("read embedded catalog: %w", err)
	}
	return catalogFromViper(v)
}

// LoadCatalog reads tables from a file. The format follows the file
// extension (yaml, json, toml).
func LoadCatalog(path string) (*Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return catalogFromViper(v)
}

func catalogFromViper(v *viper.Viper) (*Catalog, error) {
	var f catalogFile
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}

	c := &Catalog{
		organs:          f.Organs,
		severities:      f.Severities,
		professions:     f.Professions,
		maritalStatuses: f.MaritalStatuses,
		bloodTypes:      f.BloodTypes,
		capitals:        make(map[string]string, len(f.Capitals)),
	}
	for _, e := range f.Capitals {
		if _, dup := c.capitals[e.UF]; dup {
			return nil, fmt.Errorf("catalog: duplicate capital entry for %q", e.UF)
		}
		c.capitals[e.UF] = e.City
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that every table has at least one entry.
func (c *Catalog) Validate() error {
	tables := []struct {
		name string
		n    int
	}{
		{"organs", len(c.organs)},
		{"severities", len(c.severities)},
		{"professions", len(c.professions)},
		{"marital_statuses", len(c.maritalStatuses)},
		{"blood_types", len(c.bloodTypes)},
		{"capitals", len(c.capitals)},
	}
	for _, t := range tables {
		if t.n == 0 {
			return fmt.Errorf("catalog: table %s is empty", t.name)
		}
	}
	for uf, city := range c.capitals {
		if uf == "" || city == "" {
			return fmt.Errorf("catalog: capital entry %q -> %q is incomplete", uf, city)
		}
	}
	return nil
}

// Capital returns the transplant center for a UF code.
func (c *Catalog) Capital(uf string) (string, error) {
	city, ok := c.capitals[uf]
	if !ok {
		return "", &LookupError{Table: "capitals", Key: uf}
	}
	return city, nil
}

// RequireStates fails with a *LookupError on the first state that has no
// capital entry.
func (c *Catalog) RequireStates(states []string) error {
	for _, s := range states {
		if _, err := c.Capital(s); err != nil {
			return err
		}
	}
	return nil
}

// States returns the capital table keys in sorted order.
func (c *Catalog) States() []string {
	out := make([]string, 0, len(c.capitals))
	for uf := range c.capitals {
		out = append(out, uf)
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) Organs() []string          { return clone(c.organs) }
func (c *Catalog) Severities() []string      { return clone(c.severities) }
func (c *Catalog) Professions() []string     { return clone(c.professions) }
func (c *Catalog) MaritalStatuses() []string { return clone(c.maritalStatuses) }
func (c *Catalog) BloodTypes() []string      { return clone(c.bloodTypes) }

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	domainConfig "github.com/fieldlens/fieldlens/pkg/domain/model/config"
	"github.com/fieldlens/fieldlens/pkg/domain/types"
)

// App holds CLI flags for the application schema configuration
type App struct {
	configPath string
}

// Flags returns CLI flags for application configuration
func (a *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to the TOML schema configuration (entities, datasets, dev seeds)",
			Sources:     cli.EnvVars("FIELDLENS_CONFIG"),
			Destination: &a.configPath,
		},
	}
}

// Configure loads, validates and converts the schema configuration.
// Without a config path an empty schema is returned: the engine then
// infers everything from field keys alone.
func (a *App) Configure() (*domainConfig.Schema, error) {
	if a.configPath == "" {
		return &domainConfig.Schema{}, nil
	}
	return LoadSchemaConfiguration(a.configPath)
}

// SchemaConfig is the TOML representation of the application schema
type SchemaConfig struct {
	Entities []Entity  `toml:"entity"`
	Datasets []Dataset `toml:"dataset"`
}

// Entity declares an entity type reference fields may target
type Entity struct {
	Code        string `toml:"code"`
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Seeds       []Seed `toml:"seed"`
}

// Seed is a development-mode registry entry
type Seed struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

// Dataset declares the field list of one dataset
type Dataset struct {
	ID     string  `toml:"id"`
	Fields []Field `toml:"field"`
}

// Field is one declared field, optionally typed
type Field struct {
	Key  string `toml:"key"`
	Kind string `toml:"kind"`
}

// Validate checks if the Entity is valid
func (e *Entity) Validate() error {
	if e.Code == "" {
		return goerr.New("entity code is required")
	}
	if e.Name == "" {
		return goerr.New("entity name is required", goerr.V("code", e.Code))
	}
	seedIDs := make(map[string]bool)
	for _, s := range e.Seeds {
		if s.ID == "" {
			return goerr.New("seed id is required", goerr.V("code", e.Code))
		}
		if seedIDs[s.ID] {
			return goerr.New("duplicate seed id", goerr.V("code", e.Code), goerr.V("id", s.ID))
		}
		seedIDs[s.ID] = true
	}
	return nil
}

// Validate checks if the Dataset is valid
func (d *Dataset) Validate() error {
	if d.ID == "" {
		return goerr.New("dataset id is required")
	}
	keys := make(map[string]bool)
	for _, f := range d.Fields {
		if f.Key == "" {
			return goerr.New("field key is required", goerr.V("dataset", d.ID))
		}
		if keys[f.Key] {
			return goerr.New("duplicate field key", goerr.V("dataset", d.ID), goerr.V("key", f.Key))
		}
		keys[f.Key] = true
		if !types.ValueKind(f.Kind).IsValid() {
			return goerr.New("invalid field kind",
				goerr.V("dataset", d.ID),
				goerr.V("key", f.Key),
				goerr.V("kind", f.Kind))
		}
	}
	return nil
}

// Validate checks if the SchemaConfig is valid
func (c *SchemaConfig) Validate() error {
	codes := make(map[string]bool)
	for _, e := range c.Entities {
		if err := e.Validate(); err != nil {
			return goerr.Wrap(err, "invalid entity")
		}
		if codes[e.Code] {
			return goerr.New("duplicate entity code", goerr.V("code", e.Code))
		}
		codes[e.Code] = true
	}

	ids := make(map[string]bool)
	for _, d := range c.Datasets {
		if err := d.Validate(); err != nil {
			return goerr.Wrap(err, "invalid dataset")
		}
		if ids[d.ID] {
			return goerr.New("duplicate dataset id", goerr.V("id", d.ID))
		}
		ids[d.ID] = true
	}

	return nil
}

// LoadSchemaConfiguration loads the schema configuration from a TOML file
func LoadSchemaConfiguration(path string) (*domainConfig.Schema, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var cfg SchemaConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V("path", path))
	}

	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V("path", path))
	}

	return cfg.ToDomainSchema(), nil
}

// ToDomainSchema converts the TOML representation to the domain schema
func (c *SchemaConfig) ToDomainSchema() *domainConfig.Schema {
	entities := make([]domainConfig.Entity, len(c.Entities))
	for i, e := range c.Entities {
		seeds := make([]domainConfig.NameSeed, len(e.Seeds))
		for j, s := range e.Seeds {
			seeds[j] = domainConfig.NameSeed{ID: s.ID, Name: s.Name}
		}
		entities[i] = domainConfig.Entity{
			Code:        types.EntityCode(e.Code),
			Name:        e.Name,
			Description: e.Description,
			Seeds:       seeds,
		}
	}

	datasets := make([]domainConfig.DatasetSchema, len(c.Datasets))
	for i, d := range c.Datasets {
		fields := make([]domainConfig.DeclaredField, len(d.Fields))
		for j, f := range d.Fields {
			fields[j] = domainConfig.DeclaredField{
				Key:  f.Key,
				Kind: types.ValueKind(f.Kind),
			}
		}
		datasets[i] = domainConfig.DatasetSchema{ID: d.ID, Fields: fields}
	}

	return &domainConfig.Schema{Entities: entities, Datasets: datasets}
}

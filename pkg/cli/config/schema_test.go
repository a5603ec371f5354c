package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/fieldlens/fieldlens/pkg/cli/config"
	"github.com/fieldlens/fieldlens/pkg/domain/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "schema.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
	return path
}

func TestLoadSchemaConfiguration(t *testing.T) {
	t.Run("loads entities and datasets", func(t *testing.T) {
		path := writeConfig(t, `
[[entity]]
code = "employee"
name = "Employee"
description = "People records"

[[entity.seed]]
id = "e1"
name = "Alice"

[[entity.seed]]
id = "e2"
name = "Bob"

[[dataset]]
id = "assignments"

[[dataset.field]]
key = "title"

[[dataset.field]]
key = "score"
kind = "number"

[[dataset.field]]
key = "owner__employee_id"
`)

		schema, err := config.LoadSchemaConfiguration(path)
		gt.NoError(t, err).Required()

		gt.Array(t, schema.Entities).Length(1).Required()
		gt.Value(t, schema.Entities[0].Code).Equal(types.EntityCode("employee"))
		gt.Array(t, schema.Entities[0].Seeds).Length(2)

		ds := schema.DatasetSchema("assignments")
		gt.Value(t, ds).NotNil().Required()
		gt.Value(t, ds.Keys()).Equal([]string{"title", "score", "owner__employee_id"})
		gt.Value(t, ds.Fields[1].Kind).Equal(types.ValueNumber)

		gt.Value(t, schema.DatasetSchema("unknown")).Nil()
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadSchemaConfiguration("/nonexistent/schema.toml")
		gt.Error(t, err)
	})

	t.Run("invalid TOML", func(t *testing.T) {
		path := writeConfig(t, "[[entity")
		_, err := config.LoadSchemaConfiguration(path)
		gt.Error(t, err)
	})
}

func TestSchemaConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{
			"entity without code",
			`
[[entity]]
name = "Employee"
`,
		},
		{
			"entity without name",
			`
[[entity]]
code = "employee"
`,
		},
		{
			"duplicate entity code",
			`
[[entity]]
code = "employee"
name = "Employee"

[[entity]]
code = "employee"
name = "Employee Again"
`,
		},
		{
			"duplicate seed id",
			`
[[entity]]
code = "employee"
name = "Employee"

[[entity.seed]]
id = "e1"
name = "Alice"

[[entity.seed]]
id = "e1"
name = "Bob"
`,
		},
		{
			"dataset without id",
			`
[[dataset]]

[[dataset.field]]
key = "title"
`,
		},
		{
			"duplicate field key",
			`
[[dataset]]
id = "assignments"

[[dataset.field]]
key = "title"

[[dataset.field]]
key = "title"
`,
		},
		{
			"invalid field kind",
			`
[[dataset]]
id = "assignments"

[[dataset.field]]
key = "score"
kind = "decimal"
`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			_, err := config.LoadSchemaConfiguration(path)
			gt.Error(t, err)
		})
	}
}

func TestAppConfigure(t *testing.T) {
	// Without a config path an empty schema is returned
	var app config.App
	schema, err := app.Configure()
	gt.NoError(t, err).Required()
	gt.Array(t, schema.Entities).Length(0)
	gt.Array(t, schema.Datasets).Length(0)
}

package transform_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/fieldlens/fieldlens/pkg/cache"
	"github.com/fieldlens/fieldlens/pkg/domain/model"
	"github.com/fieldlens/fieldlens/pkg/repository/memory"
	"github.com/fieldlens/fieldlens/pkg/resolver"
	"github.com/fieldlens/fieldlens/pkg/transform"
)

func newEngine(t *testing.T) *transform.Engine {
	t.Helper()

	registry := memory.New()
	ctx := context.Background()
	gt.NoError(t, registry.PutNames(ctx, "employee", map[string]string{
		"e1": "Alice",
		"e2": "Bob",
	})).Required()
	gt.NoError(t, registry.PutNames(ctx, "project", map[string]string{
		"p1": "Apollo",
	})).Required()

	return transform.New(resolver.New(registry))
}

func TestEnrich(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()

	t.Run("moves reference fields into the envelope", func(t *testing.T) {
		enriched, err := engine.Enrich(ctx, model.Record{
			"name":                 "Launch plan",
			"manager__employee_id": "e1",
		})
		gt.NoError(t, err).Required()

		_, ok := enriched["manager__employee_id"]
		gt.Bool(t, ok).False()
		gt.Value(t, enriched["name"]).Equal("Launch plan")

		single := enriched[model.EnvelopeSingleKey].(map[string]model.ReferenceValue)
		gt.Value(t, single["manager"]).Equal(model.ReferenceValue{
			Entity: "employee", ID: "e1", Name: "Alice",
		})
	})

	t.Run("both envelope keys are always present", func(t *testing.T) {
		enriched, err := engine.Enrich(ctx, model.Record{"name": "plain"})
		gt.NoError(t, err).Required()

		_, hasSingle := enriched[model.EnvelopeSingleKey]
		_, hasMulti := enriched[model.EnvelopeMultiKey]
		gt.Bool(t, hasSingle).True()
		gt.Bool(t, hasMulti).True()
	})

	t.Run("input record is not mutated", func(t *testing.T) {
		record := model.Record{"manager__employee_id": "e1"}
		_, err := engine.Enrich(ctx, record)
		gt.NoError(t, err).Required()

		gt.Value(t, record["manager__employee_id"]).Equal("e1")
		_, ok := record[model.EnvelopeSingleKey]
		gt.Bool(t, ok).False()
	})

	t.Run("multi reference", func(t *testing.T) {
		enriched, err := engine.Enrich(ctx, model.Record{
			"member__employee_ids": []string{"e1", "e2"},
		})
		gt.NoError(t, err).Required()

		multi := enriched[model.EnvelopeMultiKey].(map[string][]model.ReferenceValue)
		gt.Array(t, multi["member"]).Length(2).Required()
		gt.Value(t, multi["member"][0].Name).Equal("Alice")
		gt.Value(t, multi["member"][1].Name).Equal("Bob")
	})
}

func TestRoundTrip(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		record model.Record
	}{
		{
			"single reference",
			model.Record{"name": "P", "manager__employee_id": "e1"},
		},
		{
			"bare and labeled references",
			model.Record{
				"project_id":           "p1",
				"owner__employee_id":   "e2",
				"member__employee_ids": []string{"e1", "e2"},
			},
		},
		{
			"unknown identifier survives unchanged",
			model.Record{"owner__employee_id": "ghost"},
		},
		{
			"no references",
			model.Record{"title": "hello", "unit_price": 12.5, "is_active": true},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			enriched, err := engine.Enrich(ctx, tc.record)
			gt.NoError(t, err).Required()

			gt.Value(t, engine.Flatten(enriched)).Equal(tc.record)
		})
	}
}

func TestEnrichFlattenScenario(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()

	record := model.Record{
		"id":                        "p1",
		"name":                      "Kitchen",
		"manager__employee_id":      "e1",
		"stakeholder__employee_ids": []string{"e2", "e3"},
	}

	enriched, err := engine.Enrich(ctx, record)
	gt.NoError(t, err).Required()

	gt.Value(t, enriched["id"]).Equal("p1")
	gt.Value(t, enriched["name"]).Equal("Kitchen")

	single := enriched[model.EnvelopeSingleKey].(map[string]model.ReferenceValue)
	gt.Value(t, single["manager"]).Equal(model.ReferenceValue{
		Entity: "employee", ID: "e1", Name: "Alice",
	})

	multi := enriched[model.EnvelopeMultiKey].(map[string][]model.ReferenceValue)
	stakeholders := multi["stakeholder"]
	gt.Array(t, stakeholders).Length(2).Required()
	gt.Value(t, stakeholders[0]).Equal(model.ReferenceValue{
		Entity: "employee", ID: "e2", Name: "Bob",
	})
	// e3 is not in the registry: sentinel label, identifier untouched
	gt.Value(t, stakeholders[1]).Equal(model.ReferenceValue{
		Entity: "employee", ID: "e3", Name: model.UnknownName,
	})

	gt.Value(t, engine.Flatten(enriched)).Equal(record)
}

func TestFlatten(t *testing.T) {
	engine := newEngine(t)

	t.Run("discards resolved names, keeps identifiers", func(t *testing.T) {
		flat := engine.Flatten(model.Record{
			"name": "P",
			model.EnvelopeSingleKey: map[string]model.ReferenceValue{
				"manager": {Entity: "employee", ID: "e1", Name: "Alice"},
			},
			model.EnvelopeMultiKey: map[string][]model.ReferenceValue{
				"member": {
					{Entity: "employee", ID: "e1", Name: "Alice"},
					{Entity: "employee", ID: "e2", Name: "Bob"},
				},
			},
		})

		gt.Value(t, flat).Equal(model.Record{
			"name":                 "P",
			"manager__employee_id": "e1",
			"member__employee_ids": []string{"e1", "e2"},
		})
	})

	t.Run("empty-string reference scalar normalizes to nil", func(t *testing.T) {
		flat := engine.Flatten(model.Record{"employee_id": ""})
		gt.Value(t, flat["employee_id"]).Nil()
	})

	t.Run("legacy separator-joined array coerces to a list", func(t *testing.T) {
		flat := engine.Flatten(model.Record{"skill_list": "go, sql"})
		gt.Value(t, flat["skill_list"]).Equal([]string{"go", "sql"})
	})

	t.Run("non-reference fields pass through untouched", func(t *testing.T) {
		flat := engine.Flatten(model.Record{
			"title":      "hello",
			"unit_price": 12.5,
		})
		gt.Value(t, flat["title"]).Equal("hello")
		gt.Value(t, flat["unit_price"]).Equal(12.5)
	})

	t.Run("entries with empty identifiers are dropped", func(t *testing.T) {
		flat := engine.Flatten(model.Record{
			model.EnvelopeSingleKey: map[string]model.ReferenceValue{
				"manager": {Entity: "employee", ID: "", Name: "Alice"},
			},
		})
		_, ok := flat["manager__employee_id"]
		gt.Bool(t, ok).False()
	})
}

func TestFlattenDecodedJSON(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()

	// A record that went out as JSON and came back decoded must flatten
	// exactly like its typed in-process counterpart.
	enriched, err := engine.Enrich(ctx, model.Record{
		"name":                 "P",
		"owner__employee_id":   "e1",
		"member__employee_ids": []string{"e1", "e2"},
	})
	gt.NoError(t, err).Required()

	raw, err := json.Marshal(enriched)
	gt.NoError(t, err).Required()

	var decoded model.Record
	gt.NoError(t, json.Unmarshal(raw, &decoded)).Required()

	flat := engine.Flatten(decoded)
	gt.Value(t, flat["name"]).Equal("P")
	gt.Value(t, flat["owner__employee_id"]).Equal("e1")
	gt.Value(t, flat["member__employee_ids"]).Equal([]string{"e1", "e2"})
	_, ok := flat[model.EnvelopeSingleKey]
	gt.Bool(t, ok).False()
}

func TestMetadataCacheBypass(t *testing.T) {
	registry := memory.New()
	ctx := context.Background()
	gt.NoError(t, registry.PutNames(ctx, "employee", map[string]string{"e1": "Alice"})).Required()

	record := model.Record{"title": "a", "owner__employee_id": "e1", "skill_list": "go, sql"}

	// A cached engine and a cache-less one must behave identically
	cold := transform.New(resolver.New(registry))
	warm := transform.New(resolver.New(registry, resolver.WithMetadataCache(cache.NewMetadata(8))),
		transform.WithMetadataCache(cache.NewMetadata(8)))

	coldOut, err := cold.Enrich(ctx, record)
	gt.NoError(t, err).Required()
	warmOut, err := warm.Enrich(ctx, record)
	gt.NoError(t, err).Required()
	gt.Value(t, warmOut).Equal(coldOut)

	gt.Value(t, warm.Flatten(warmOut)).Equal(cold.Flatten(coldOut))
}

func TestEnrichBatch(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()

	records := []model.Record{
		{"employee_id": "e1"},
		{"employee_id": "e2"},
		{"title": "no refs"},
	}

	enriched, err := engine.EnrichBatch(ctx, records, nil)
	gt.NoError(t, err).Required()
	gt.Array(t, enriched).Length(3).Required()

	single := enriched[0][model.EnvelopeSingleKey].(map[string]model.ReferenceValue)
	gt.Value(t, single["employee"].Name).Equal("Alice")
	single = enriched[1][model.EnvelopeSingleKey].(map[string]model.ReferenceValue)
	gt.Value(t, single["employee"].Name).Equal("Bob")
}

func TestFlattenBatch(t *testing.T) {
	engine := newEngine(t)

	t.Run("nil record fails the batch", func(t *testing.T) {
		_, err := engine.FlattenBatch([]model.Record{{"title": "x"}, nil})
		gt.Error(t, err)
	})

	t.Run("flattens every record", func(t *testing.T) {
		out, err := engine.FlattenBatch([]model.Record{
			{"title": "a"},
			{"employee_id": ""},
		})
		gt.NoError(t, err).Required()
		gt.Array(t, out).Length(2).Required()
		gt.Value(t, out[0]["title"]).Equal("a")
		gt.Value(t, out[1]["employee_id"]).Nil()
	})
}

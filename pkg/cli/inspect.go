package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/fieldlens/fieldlens/pkg/detector"
	"github.com/fieldlens/fieldlens/pkg/domain/model"
	"github.com/fieldlens/fieldlens/pkg/domain/types"
)

// categoryColors maps field categories to output colors. Categories not
// listed here print without color.
var categoryColors = map[types.FieldCategory]*color.Color{
	types.CategorySystem:           color.New(color.FgHiBlack),
	types.CategoryMetadataEnvelope: color.New(color.FgHiBlack),
	types.CategoryCurrency:         color.New(color.FgGreen),
	types.CategoryBadge:            color.New(color.FgMagenta),
	types.CategoryDate:             color.New(color.FgCyan),
	types.CategoryTimestamp:        color.New(color.FgCyan),
	types.CategoryBoolean:          color.New(color.FgYellow),
	types.CategoryPercentage:       color.New(color.FgGreen),
	types.CategoryReferenceSingle:  color.New(color.FgBlue),
	types.CategoryReferenceMulti:   color.New(color.FgBlue),
	types.CategoryArray:            color.New(color.FgMagenta),
	types.CategoryJSON:             color.New(color.FgRed),
}

func cmdInspect() *cli.Command {
	var declaredType string

	return &cli.Command{
		Name:      "inspect",
		Aliases:   []string{"i"},
		Usage:     "Show the metadata inferred for field keys",
		ArgsUsage: "KEY [KEY...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "type",
				Aliases:     []string{"t"},
				Usage:       "Declared value kind applied when no naming rule matches (string, number, bool, json)",
				Destination: &declaredType,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			keys := c.Args().Slice()
			if len(keys) == 0 {
				return goerr.New("at least one field key is required")
			}

			declared := types.ValueKind(declaredType)
			if !declared.IsValid() {
				return goerr.New("invalid value kind", goerr.V("type", declaredType))
			}

			for i, key := range keys {
				if i > 0 {
					fmt.Println()
				}
				printFieldMetadata(key, detector.Detect(key, declared))
			}

			return nil
		},
	}
}

func printFieldMetadata(key string, meta model.FieldMetadata) {
	bold := color.New(color.Bold)
	faint := color.New(color.FgHiBlack)

	bold.Printf("%s\n", key)

	categoryColor, ok := categoryColors[meta.Category]
	if !ok {
		categoryColor = color.New()
	}

	printAttr := func(name, value string) {
		faint.Fprintf(os.Stdout, "  %-12s", name)
		fmt.Println(value)
	}

	faint.Fprintf(os.Stdout, "  %-12s", "category")
	categoryColor.Println(meta.Category.String())

	printAttr("label", meta.Label)
	printAttr("render", string(meta.RenderKind))
	printAttr("edit", string(meta.EditKind))
	printAttr("editable", fmt.Sprintf("%t", meta.Editable))
	printAttr("align", string(meta.Alignment))
	printAttr("width", fmt.Sprintf("%d", meta.WidthHint))
	printAttr("visible", visibleConsumers(meta.VisibleIn))

	if meta.SettingsBacked {
		printAttr("settings", "backed by settings option list")
	}
	if meta.Category.IsReference() {
		printAttr("target", meta.ReferenceTarget.String())
		printAttr("cardinality", string(meta.Cardinality))
	}
}

func visibleConsumers(visibleIn map[types.Consumer]bool) string {
	var visible []string
	for _, consumer := range types.AllConsumers() {
		if visibleIn[consumer] {
			visible = append(visible, string(consumer))
		}
	}
	if len(visible) == 0 {
		return "(none)"
	}
	return strings.Join(visible, ", ")
}

package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/huangsam/pagescore/internal/contract"
	"github.com/huangsam/pagescore/schema"
)

// categoryRules summarizes what each scorer rewards.
var categoryRules = map[schema.Category]string{
	schema.TitleCategory:           "Present, 30-60 characters, varied words, brand separator",
	schema.MetaDescriptionCategory: "Present, 120-160 characters, call to action, meaningful words",
	schema.HeadingsCategory:        "Exactly one H1, supporting H2s, valid hierarchy, descriptive text",
	schema.ContentCategory:         "Word count, text to HTML ratio, paragraph structure",
	schema.ImagesCategory:          "Alt text coverage first, title attributes second",
	schema.LinksCategory:           "Internal links, some external links, descriptive anchors",
	schema.TechnicalCategory:       "DOCTYPE, lang attribute, HTTPS, schema markup, Open Graph, few inline styles",
	schema.SocialMediaCategory:     "Open Graph and Twitter card tags",
	schema.StructuredDataCategory:  "JSON-LD, microdata and RDFa with recognized schema types",
}

// PrintWeights displays the active category weights with a summary of each scoring rule.
func PrintWeights(weights map[schema.Category]int, cfg *contract.Config) error {
	rows := buildWeightRows(weights)

	switch cfg.Output {
	case schema.JSONOut:
		return emit(cfg.OutputFile, cfg.Output, func(w io.Writer) error {
			return encodeJSON(w, rows)
		})
	case schema.CSVOut:
		return emit(cfg.OutputFile, cfg.Output, func(w io.Writer) error {
			return writeWeightsCSV(w, rows)
		})
	default:
		return emit(cfg.OutputFile, schema.TextOut, func(w io.Writer) error {
			return writeWeightsText(w, rows)
		})
	}
}

// buildWeightRows lists the weights in report order. Missing categories weigh zero.
func buildWeightRows(weights map[schema.Category]int) []schema.WeightRow {
	rows := make([]schema.WeightRow, 0, len(schema.AllCategories))
	for _, c := range schema.AllCategories {
		rows = append(rows, schema.WeightRow{Category: c, Weight: weights[c], Rule: categoryRules[c]})
	}
	return rows
}

// writeWeightsText writes the weights as a table followed by their total.
func writeWeightsText(w io.Writer, rows []schema.WeightRow) error {
	if _, err := fmt.Fprintf(w, "📊 Category Weights\n\n"); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Category", "Weight", "Rewards"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	total := 0
	var data [][]string
	for _, row := range rows {
		total += row.Weight
		data = append(data, []string{string(row.Category), fmt.Sprintf("%d%%", row.Weight), row.Rule})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Total weight: %d%%\n", total)
	return err
}

// writeWeightsCSV writes one row per category.
func writeWeightsCSV(w io.Writer, rows []schema.WeightRow) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{string(row.Category), strconv.Itoa(row.Weight), row.Rule})
	}
	return encodeCSV(w, []string{"category", "weight", "rule"}, records)
}

// Package export flattens a stored run into tables and writes them as XLSX
// workbooks or CSV.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/brand-scope/internal/model"
)

// Table is one sheet of an export.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Table names, in workbook order.
const (
	TableRankings    = "rankings"
	TableInsights    = "insights"
	TableComparisons = "comparisons"
	TableTrends      = "trends"
)

// Tables flattens res. Rankings are always present; the other tables only
// when the run has rows for them.
func Tables(res *model.SearchResults) []Table {
	rankings := Table{
		Name:   TableRankings,
		Header: []string{"mode_id", "mode", "llm_name", "query", "entity_name", "entity_type", "rank", "score", "reasoning", "analyzed_at"},
	}
	for _, r := range res.AIRankings {
		rank := ""
		if r.Rank != nil {
			rank = strconv.Itoa(*r.Rank)
		}
		rankings.Rows = append(rankings.Rows, []string{
			r.ModeID, string(r.Mode), r.LLMName, r.Query, r.EntityName, string(r.EntityType),
			rank, strconv.FormatFloat(r.Score, 'f', -1, 64), r.Reasoning,
			r.AnalyzedAt.UTC().Format(time.RFC3339),
		})
	}
	tables := []Table{rankings}

	if len(res.SocialInsights) > 0 {
		t := Table{
			Name:   TableInsights,
			Header: []string{"entity_name", "platform", "keyword", "mention_count", "sentiment", "data_fetched_at"},
		}
		for _, in := range res.SocialInsights {
			t.Rows = append(t.Rows, []string{
				in.EntityName, in.Platform, in.Keyword, strconv.Itoa(in.MentionCount),
				string(in.Sentiment), in.DataFetchedAt.UTC().Format(time.RFC3339),
			})
		}
		tables = append(tables, t)
	}

	if len(res.Comparisons) > 0 {
		t := Table{
			Name:   TableComparisons,
			Header: []string{"competitor", "ranking_diff", "analysis"},
		}
		for _, c := range res.Comparisons {
			t.Rows = append(t.Rows, []string{c.Competitor, strconv.Itoa(c.RankingDiff), c.Analysis})
		}
		tables = append(tables, t)
	}

	if len(res.Charts) > 0 {
		t := Table{
			Name:   TableTrends,
			Header: []string{"keyword", "date", "value", "synthetic"},
		}
		for _, ch := range res.Charts {
			for _, p := range ch.TrendPoints {
				t.Rows = append(t.Rows, []string{ch.Keyword, p.Date, strconv.Itoa(p.Value), strconv.FormatBool(ch.Synthetic)})
			}
		}
		tables = append(tables, t)
	}

	return tables
}

// WriteXLSX saves every table of res as a sheet of a new workbook at path.
func WriteXLSX(path string, res *model.SearchResults) error {
	f := xlsx.NewFile()
	for _, t := range Tables(res) {
		sheet, err := f.AddSheet(t.Name)
		if err != nil {
			return eris.Wrapf(err, "export: add sheet %s", t.Name)
		}
		addRow(sheet, t.Header)
		for _, row := range t.Rows {
			addRow(sheet, row)
		}
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, v := range cells {
		row.AddCell().SetString(v)
	}
}

// WriteCSV writes the named table of res with a header row.
func WriteCSV(w io.Writer, res *model.SearchResults, table string) error {
	var found *Table
	for _, t := range Tables(res) {
		if t.Name == table {
			found = &t
			break
		}
	}
	if found == nil {
		return eris.Errorf("export: run %s has no %s table", res.ModeID, table)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(found.Header); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	if err := cw.WriteAll(found.Rows); err != nil {
		return eris.Wrap(err, "export: write csv rows")
	}
	return nil
}

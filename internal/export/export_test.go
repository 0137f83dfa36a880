package export

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/brand-scope/internal/model"
)

func intPtr(v int) *int { return &v }

func explorerRun() *model.SearchResults {
	at := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	return &model.SearchResults{
		SearchID: "m1",
		Mode:     model.ModeExplorer,
		ModeID:   "m1",
		AIRankings: []model.AIRanking{
			{EntityName: "Acme", EntityType: model.EntityBrand, LLMName: "DeepSeek R-1", Query: "anvils",
				Rank: intPtr(2), Score: 81.5, Mode: model.ModeExplorer, ModeID: "m1", AnalyzedAt: at},
			{EntityName: "Globex", EntityType: model.EntityCompetitor, LLMName: "DeepSeek R-1", Query: "anvils",
				Rank: nil, Score: 40, Reasoning: "unranked", Mode: model.ModeExplorer, ModeID: "m1", AnalyzedAt: at},
		},
		Comparisons: []model.CompetitorComparison{
			{Competitor: "Globex", RankingDiff: 2, Analysis: "Acme leads"},
		},
	}
}

func TestTables_SkipsEmptySections(t *testing.T) {
	tables := Tables(explorerRun())
	require.Len(t, tables, 2)
	assert.Equal(t, TableRankings, tables[0].Name)
	assert.Equal(t, TableComparisons, tables[1].Name)

	require.Len(t, tables[0].Rows, 2)
	assert.Equal(t, "2", tables[0].Rows[0][6])
	assert.Equal(t, "81.5", tables[0].Rows[0][7])
	assert.Equal(t, "", tables[0].Rows[1][6], "unranked stays blank, not 0")
	assert.Equal(t, "2026-03-10T15:00:00Z", tables[0].Rows[0][9])

	assert.Equal(t, []string{"Globex", "2", "Acme leads"}, tables[1].Rows[0])
}

func TestTables_TrendsOneRowPerPoint(t *testing.T) {
	res := &model.SearchResults{
		ModeID: "m2",
		Charts: []model.ChartData{
			{Keyword: "Nike", Synthetic: true, TrendPoints: []model.TrendPoint{{Date: "2026-03-09", Value: 31}, {Date: "2026-03-10", Value: 99}}},
		},
	}
	tables := Tables(res)
	require.Len(t, tables, 2)
	assert.Empty(t, tables[0].Rows)
	assert.Equal(t, TableTrends, tables[1].Name)
	assert.Equal(t, [][]string{
		{"Nike", "2026-03-09", "31", "true"},
		{"Nike", "2026-03-10", "99", "true"},
	}, tables[1].Rows)
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.xlsx")
	require.NoError(t, WriteXLSX(path, explorerRun()))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)

	sheet, ok := f.Sheet[TableRankings]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "mode_id", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "Acme", sheet.Rows[1].Cells[4].String())

	_, ok = f.Sheet[TableComparisons]
	assert.True(t, ok)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, explorerRun(), TableComparisons))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"competitor", "ranking_diff", "analysis"},
		{"Globex", "2", "Acme leads"},
	}, rows)
}

func TestWriteCSV_MissingTable(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, explorerRun(), TableInsights)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no insights table")
	assert.Zero(t, buf.Len())
}

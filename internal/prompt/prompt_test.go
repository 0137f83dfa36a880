package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderReplacesAllOccurrences(t *testing.T) {
	t.Parallel()

	got := Render("{brand_name} vs {competitor_name}; {brand_name} wins", Vars{
		BrandName:      "Acme",
		CompetitorName: "Gizmo Co",
	})
	assert.Equal(t, "Acme vs Gizmo Co; Acme wins", got)
}

func TestRenderSinglePass(t *testing.T) {
	t.Parallel()

	// A value that looks like a placeholder must not be expanded again.
	got := Render("{brand_name} / {query}", Vars{BrandName: "{query}", Query: "shoes"})
	assert.Equal(t, "{query} / shoes", got)
}

func TestRenderLeavesUnknownPlaceholders(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "hello {industry}", Render("hello {industry}", Vars{Query: "x"}))
	assert.Equal(t, "as-is", Render("as-is", nil))
}

func TestTemplatesHaveNoLeftoverPlaceholders(t *testing.T) {
	t.Parallel()

	rendered := map[string]string{
		"ranking":    BrandRanking("best tech companies"),
		"explorer":   ExplorerBrand("Acme", "best anvils"),
		"comparison": Comparison("Acme", "Widgets Inc", "best anvils"),
		"sentiment":  Sentiment("love it"),
		"top":        TopBrands("coffee"),
		"discovery":  CompetitorDiscovery("Acme", "tools", "Source (u): t"),
		"perception": Perception("Acme", "tools", "https://acme.test", "ctx"),
		"landscape":  Landscape("Acme", "tools"),
		"keywords":   Keywords("Acme", "tools"),
	}
	for name, text := range rendered {
		for _, ph := range []string{Query, Industry, BrandName, CompetitorName, Website, Text, Context} {
			assert.NotContains(t, text, ph, "%s still contains %s", name, ph)
		}
	}
}

func TestComparisonSubstitutesBrandEverywhere(t *testing.T) {
	t.Parallel()

	got := Comparison("Acme", "Gizmo Co", "best anvils")
	assert.Equal(t, 2, strings.Count(got, `"Acme"`))
	assert.Equal(t, 2, strings.Count(got, `"Gizmo Co"`))
	assert.Contains(t, got, `"best anvils"`)
}

func TestSource(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Source (https://a.test): hi", Source("https://a.test", "hi"))
}

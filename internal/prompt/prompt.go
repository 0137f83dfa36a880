// Package prompt renders the fixed prompt templates used by the analysis
// orchestrators.
package prompt

import (
	"fmt"
	"strings"
)

// Placeholders understood by Render.
const (
	Query          = "{query}"
	Industry       = "{industry}"
	BrandName      = "{brand_name}"
	CompetitorName = "{competitor_name}"
	Website        = "{website}"
	Text           = "{text}"
	Context        = "{context}"
)

// Vars maps a placeholder (including braces) to its value.
type Vars map[string]string

// Render substitutes every occurrence of every placeholder in tmpl. It is a
// single pass, so placeholder-looking text inside a value is left alone.
// Unknown placeholders are left as-is.
func Render(tmpl string, vars Vars) string {
	if len(vars) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, k, v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

const brandRankingTemplate = `You are an expert brand analyst.
Analyze the following query: "{query}".
Generate a list of relevant brands and provide a numerical rank (1-10, with 1 being the best) and a confidence score (0-100) for each brand.
Also provide detailed reasoning for each ranking based on market analysis, consumer perception, and brand reputation.
Your reasoning should be comprehensive yet concise. Use null for rank if you cannot rank a brand.`

const explorerBrandTemplate = `Analyze brand "{brand_name}" for query "{query}". Provide rank (1-10, with 1 being the best, or null if you cannot rank it), confidence score (0-100), and detailed reasoning.`

const comparisonTemplate = `You are a competitive analysis expert.
Compare the brand "{brand_name}" with its competitor "{competitor_name}" for the query: "{query}".
Provide a numerical rank (1-10, with 1 being the best) for both the brand and the competitor, or null when a party cannot be ranked.
Also assign a confidence score (0-100) and provide a detailed analysis of how "{brand_name}" can gain an edge over "{competitor_name}".
Focus on actionable insights and specific advantages/disadvantages.`

const sentimentTemplate = `Analyze the sentiment of this text: "{text}"`

const topBrandsTemplate = `You are a brand analysis expert. Generate a list of 10 leading brands in {industry} with a brief description of each.`

const competitorDiscoveryTemplate = `Based on the following search results about competitors of {brand_name} in the {industry} industry, identify the top 3-5 competitor brands. Return only the competitor brand names.

Search results:
{context}`

const perceptionTemplate = `You are an expert brand analyst representing the collective opinion of 10,000 diverse consumers.

Analyze the brand "{brand_name}" in the "{industry}" industry with website "{website}".

Consider the following factors:
1. Brand visibility and awareness
2. Consumer sentiment
3. Market positioning
4. Unique selling propositions
5. Brand reputation

Provide a comprehensive analysis of how consumers perceive this brand.

Here is some brief context about the brand from the web:

{context}`

const landscapeTemplate = `You are a market research expert.

Identify the top 10 competitors of "{brand_name}" in the "{industry}" industry.

For each competitor:
1. Provide their name
2. Estimate their website if known (or leave blank if uncertain)
3. Estimate ranking_diff: how many places {brand_name} ranks above this competitor (negative when below)
4. List their strengths
5. List their weaknesses

Focus on direct competitors in the same market segment.`

const keywordTemplate = `You are an SEO specialist.

Generate a list of 20 high-value keywords for "{brand_name}" in the "{industry}" industry.

For each keyword:
1. Estimate monthly search volume (realistic numbers)
2. Rate difficulty to rank on a scale of 0.0-10.0
3. Calculate an opportunity score on a scale of 0.0-10.0 based on search volume and competition
4. Rate relevance to the brand on a scale of 0.0-10.0

Focus on both high-volume and long-tail keywords that would drive valuable traffic.`

// BrandRanking is shared by DeepFocus and Voyager.
func BrandRanking(query string) string {
	return Render(brandRankingTemplate, Vars{Query: query})
}

// ExplorerBrand asks for a single brand's rank for a query.
func ExplorerBrand(brand, query string) string {
	return Render(explorerBrandTemplate, Vars{BrandName: brand, Query: query})
}

// Comparison asks for a head-to-head ranking of brand against competitor.
func Comparison(brand, competitor, query string) string {
	return Render(comparisonTemplate, Vars{BrandName: brand, CompetitorName: competitor, Query: query})
}

// Sentiment asks for a 3-way sentiment label of already-truncated text.
func Sentiment(text string) string {
	return Render(sentimentTemplate, Vars{Text: text})
}

// TopBrands asks for the leading brands of an industry.
func TopBrands(industry string) string {
	return Render(topBrandsTemplate, Vars{Industry: industry})
}

// CompetitorDiscovery asks to pull competitor names out of search snippets.
func CompetitorDiscovery(brand, industry, snippets string) string {
	return Render(competitorDiscoveryTemplate, Vars{BrandName: brand, Industry: industry, Context: snippets})
}

// Perception asks for a consumer-perception snapshot grounded on web context.
func Perception(brand, industry, website, webContext string) string {
	return Render(perceptionTemplate, Vars{BrandName: brand, Industry: industry, Website: website, Context: webContext})
}

// Landscape asks for the competitor landscape of a brand.
func Landscape(brand, industry string) string {
	return Render(landscapeTemplate, Vars{BrandName: brand, Industry: industry})
}

// Keywords asks for SEO keyword estimates.
func Keywords(brand, industry string) string {
	return Render(keywordTemplate, Vars{BrandName: brand, Industry: industry})
}

// Source formats one search document as a prompt context line.
func Source(url, text string) string {
	return fmt.Sprintf("Source (%s): %s", url, text)
}

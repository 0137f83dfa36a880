package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/brand-scope/internal/generate"
)

func TestDefaultRoster(t *testing.T) {
	t.Parallel()
	r := DefaultRoster()
	require.NoError(t, r.Validate())
	assert.Len(t, r.DeepFocus, 2)
	assert.Len(t, r.Voyager, 5)

	b, ok := r.Backend("deepseek-r1")
	require.True(t, ok)
	assert.Equal(t, "deepseek-r1-distill-llama-70b", b.Model)
	assert.Equal(t, []string{generate.ProviderGroq}, r.Providers())
}

func writeRoster(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadRoster_Overrides(t *testing.T) {
	t.Parallel()
	path := writeRoster(t, `
roster:
  backends:
    - id: claude-haiku
      provider: anthropic
      model: claude-haiku-4-5-20251001
      name: Claude Haiku 4.5
    - id: gemma2-9b
      provider: groq
      model: gemma2-9b-it
      name: Gemma Two
  deep_focus: [claude-haiku, gemma2-9b]
  sentiment: claude-haiku
`)
	r, err := LoadRoster(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"claude-haiku", "gemma2-9b"}, r.DeepFocus)
	assert.Len(t, r.Voyager, 5)
	assert.Equal(t, "claude-haiku", r.Sentiment)
	assert.Equal(t, "deepseek-r1", r.Explorer)

	g, _ := r.Backend("gemma2-9b")
	assert.Equal(t, "Gemma Two", g.Name)
	assert.ElementsMatch(t, []string{generate.ProviderGroq, generate.ProviderAnthropic}, r.Providers())
}

func TestLoadRoster_Errors(t *testing.T) {
	t.Parallel()

	_, err := LoadRoster(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "analysis: read roster")

	_, err = LoadRoster(writeRoster(t, "roster: [unclosed"))
	assert.ErrorContains(t, err, "analysis: parse roster")

	_, err = LoadRoster(writeRoster(t, "roster:\n  explorer: gpt-9\n"))
	assert.ErrorContains(t, err, `unknown backend "gpt-9"`)
}

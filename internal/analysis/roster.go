package analysis

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/brand-scope/internal/generate"
)

// Roster names the backends used by each mode and helper task. Entries in
// the mode lists and task fields are backend ids from Backends.
type Roster struct {
	Backends    []generate.Backend `yaml:"backends"`
	DeepFocus   []string           `yaml:"deep_focus"`
	Voyager     []string           `yaml:"voyager"`
	Explorer    string             `yaml:"explorer"`
	Sentiment   string             `yaml:"sentiment"`
	TopBrands   string             `yaml:"top_brands"`
	Competitors string             `yaml:"competitors"`
	Perception  string             `yaml:"perception"`
}

// DefaultRoster returns the built-in roster. Every backend is served by Groq.
func DefaultRoster() *Roster {
	return &Roster{
		Backends: []generate.Backend{
			{ID: "gemma2-9b", Provider: generate.ProviderGroq, Model: "gemma2-9b-it", Name: "Gemma 2 9B"},
			{ID: "llama-3.3-70b", Provider: generate.ProviderGroq, Model: "llama-3.3-70b-versatile", Name: "Llama 3.3 70B"},
			{ID: "llama3-8b", Provider: generate.ProviderGroq, Model: "llama3-8b-8192", Name: "Llama 3.3 8B"},
			{ID: "mistral-saba-24b", Provider: generate.ProviderGroq, Model: "mistral-saba-24b", Name: "Mistral Saba 24B"},
			{ID: "deepseek-r1", Provider: generate.ProviderGroq, Model: "deepseek-r1-distill-llama-70b", Name: "DeepSeek R-1"},
			{ID: "qwen-2.5-32b", Provider: generate.ProviderGroq, Model: "qwen-2.5-32b", Name: "Qwen 2.5 32B"},
			{ID: "llama3-70b", Provider: generate.ProviderGroq, Model: "llama3-70b-8192", Name: "Llama 3 70B"},
		},
		DeepFocus:   []string{"gemma2-9b", "llama-3.3-70b"},
		Voyager:     []string{"llama3-8b", "mistral-saba-24b", "gemma2-9b", "deepseek-r1", "qwen-2.5-32b"},
		Explorer:    "deepseek-r1",
		Sentiment:   "llama3-70b",
		TopBrands:   "llama-3.3-70b",
		Competitors: "gemma2-9b",
		Perception:  "llama3-70b",
	}
}

// LoadRoster reads a roster from a YAML file with a top-level "roster" key.
// Fields left out of the file keep their built-in values.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "analysis: read roster %s", path)
	}

	var wrapper struct {
		Roster Roster `yaml:"roster"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "analysis: parse roster")
	}

	r := DefaultRoster()
	r.merge(&wrapper.Roster)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Roster) merge(o *Roster) {
	if len(o.Backends) > 0 {
		byID := make(map[string]int, len(r.Backends))
		for i, b := range r.Backends {
			byID[b.ID] = i
		}
		for _, b := range o.Backends {
			if i, ok := byID[b.ID]; ok {
				r.Backends[i] = b
				continue
			}
			r.Backends = append(r.Backends, b)
		}
	}
	if len(o.DeepFocus) > 0 {
		r.DeepFocus = o.DeepFocus
	}
	if len(o.Voyager) > 0 {
		r.Voyager = o.Voyager
	}
	setIf(&r.Explorer, o.Explorer)
	setIf(&r.Sentiment, o.Sentiment)
	setIf(&r.TopBrands, o.TopBrands)
	setIf(&r.Competitors, o.Competitors)
	setIf(&r.Perception, o.Perception)
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Validate checks that every referenced id names a backend.
func (r *Roster) Validate() error {
	if len(r.DeepFocus) == 0 || len(r.Voyager) == 0 {
		return eris.New("analysis: roster needs deep_focus and voyager backends")
	}
	refs := append(append([]string{}, r.DeepFocus...), r.Voyager...)
	refs = append(refs, r.Explorer, r.Sentiment, r.TopBrands, r.Competitors, r.Perception)
	for _, id := range refs {
		if _, ok := r.Backend(id); !ok {
			return eris.Errorf("analysis: roster references unknown backend %q", id)
		}
	}
	return nil
}

// Backend returns the backend registered under id.
func (r *Roster) Backend(id string) (generate.Backend, bool) {
	for _, b := range r.Backends {
		if b.ID == id {
			return b, true
		}
	}
	return generate.Backend{}, false
}

// Providers returns the distinct providers the roster uses.
func (r *Roster) Providers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, b := range r.Backends {
		if !seen[b.Provider] {
			seen[b.Provider] = true
			out = append(out, b.Provider)
		}
	}
	return out
}

package shared

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AnalysisConfig carries the classification and report-styling knobs that
// components receive at construction time. Keyword lists and thresholds
// are a required input: a file that empties them is a configuration error.
type AnalysisConfig struct {
	Sentiment SentimentConfig `yaml:"sentiment"`
	Names     NamesConfig     `yaml:"names"`
	Palette   PaletteConfig   `yaml:"palette"`
}

type SentimentConfig struct {
	PositiveThreshold float64  `yaml:"positive_threshold"`
	NegativeThreshold float64  `yaml:"negative_threshold"`
	StarWeight        float64  `yaml:"star_weight"`
	StaffKeywords     []string `yaml:"staff_keywords"`
	StoreKeywords     []string `yaml:"store_keywords"`
}

type NamesConfig struct {
	CaseSensitive bool `yaml:"case_sensitive"`
	Fuzzy         bool `yaml:"fuzzy"`
}

type PaletteConfig struct {
	Primary    string `yaml:"primary"`
	Secondary  string `yaml:"secondary"`
	LightGray  string `yaml:"light_gray"`
	MediumGray string `yaml:"medium_gray"`
	DarkGray   string `yaml:"dark_gray"`
	White      string `yaml:"white"`
	TextDark   string `yaml:"text_dark"`
}

func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		Sentiment: SentimentConfig{
			PositiveThreshold: 0.05,
			NegativeThreshold: -0.05,
			StarWeight:        0.1,
			StaffKeywords: []string{
				"salesman", "sales", "staff", "employee", "service", "representative",
				"helped", "assist", "friendly", "professional", "rude", "polite",
				"customer service", "agent", "worker", "team member", "seller",
			},
			StoreKeywords: []string{
				"store", "shop", "location", "place", "branch", "showroom", "facility",
				"clean", "organized", "parking", "atmosphere", "environment", "products",
				"inventory", "selection", "variety", "quality", "price", "pricing",
				"building", "area", "space", "display",
			},
		},
		Names:   NamesConfig{CaseSensitive: false, Fuzzy: true},
		Palette: DefaultPalette(),
	}
}

func DefaultPalette() PaletteConfig {
	return PaletteConfig{
		Primary:    "FF6B35",
		Secondary:  "004E89",
		LightGray:  "F4F4F4",
		MediumGray: "E0E0E0",
		DarkGray:   "666666",
		White:      "FFFFFF",
		TextDark:   "2C2C2C",
	}
}

// LoadAnalysis reads the YAML analysis config at path, falling back to
// defaults for anything left unset. An empty path returns the defaults.
func LoadAnalysis(path string) (AnalysisConfig, error) {
	cfg := DefaultAnalysisConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return AnalysisConfig{}, fmt.Errorf("read analysis config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return AnalysisConfig{}, fmt.Errorf("parse analysis config: %w", err)
	}
	if len(cfg.Sentiment.StaffKeywords) == 0 || len(cfg.Sentiment.StoreKeywords) == 0 {
		return AnalysisConfig{}, fmt.Errorf("analysis config %s: keyword lists must not be empty", path)
	}
	return cfg, nil
}

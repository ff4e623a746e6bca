package extractor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"sjsage522/promowatch/logger"

	apperrors "sjsage522/promowatch/pkg/errors"
)

// Selectors holds the structural markers used to find promotions. Markers
// are matched as substrings of an element's class attribute.
type Selectors struct {
	HeroMarker          string   `yaml:"hero_marker"`
	HeroContainerMarker string   `yaml:"hero_container_marker"`
	DetailsMarker       string   `yaml:"details_marker"`
	Headings            string   `yaml:"headings"`
	Articles            string   `yaml:"articles"`
	CodeLabels          []string `yaml:"code_labels"`
	PriceMarker         string   `yaml:"price_marker"`
}

// DefaultSelectors returns the markers matching the MEC featured page
func DefaultSelectors() Selectors {
	return Selectors{
		HeroMarker:          "HeroTextBlock",
		HeroContainerMarker: "Hero_heroContainer",
		DetailsMarker:       "RichTextContainer",
		Headings:            "h1, h4",
		Articles:            "article",
		CodeLabels:          []string{"Promo Code", "Code:"},
		PriceMarker:         "$",
	}
}

// LoadSelectors reads a YAML selectors file. Fields left out of the file
// keep their default value.
func LoadSelectors(path string) (Selectors, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Selectors{}, apperrors.NewParsing(path, "failed to read selectors file", err)
	}

	var fromFile Selectors
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return Selectors{}, apperrors.NewParsing(path, "failed to parse selectors file", err)
	}

	return fromFile.withDefaults(), nil
}

// LoadSelectorsWithFallback loads path when set and falls back to the
// defaults on any error
func LoadSelectorsWithFallback(path string, log *logger.Logger) Selectors {
	if path == "" {
		return DefaultSelectors()
	}
	sel, err := LoadSelectors(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to load selectors, using defaults")
		return DefaultSelectors()
	}
	log.Info().Str("path", path).Msg("Loaded selectors from file")
	return sel
}

func (s Selectors) withDefaults() Selectors {
	d := DefaultSelectors()
	if s.HeroMarker == "" {
		s.HeroMarker = d.HeroMarker
	}
	if s.HeroContainerMarker == "" {
		s.HeroContainerMarker = d.HeroContainerMarker
	}
	if s.DetailsMarker == "" {
		s.DetailsMarker = d.DetailsMarker
	}
	if s.Headings == "" {
		s.Headings = d.Headings
	}
	if s.Articles == "" {
		s.Articles = d.Articles
	}
	if len(s.CodeLabels) == 0 {
		s.CodeLabels = d.CodeLabels
	}
	if s.PriceMarker == "" {
		s.PriceMarker = d.PriceMarker
	}
	return s
}

// byMarker builds a selector for tag elements whose class contains marker
func byMarker(tag, marker string) string {
	return fmt.Sprintf("%s[class*=%q]", tag, marker)
}

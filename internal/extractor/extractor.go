package extractor

import (
	"iter"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/promowatch/helpers"
	"sjsage522/promowatch/logger"

	apperrors "sjsage522/promowatch/pkg/errors"
)

// Extractor turns the promotions page markup into Promotion records
type Extractor struct {
	selectors Selectors
	base      *url.URL
	log       *logger.Logger
}

// New creates an extractor. Relative image URLs are resolved against baseURL.
func New(selectors Selectors, baseURL string, log *logger.Logger) (*Extractor, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, apperrors.NewConfiguration("invalid base URL "+baseURL, err)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Extractor{
		selectors: selectors.withDefaults(),
		base:      base,
		log:       log,
	}, nil
}

// Extract returns the promotions found in markup, hero blocks first and
// articles second, each in document order. Records sharing an id with an
// earlier one are dropped.
//
// Parsing starts on the first iteration. The sequence can be ranged over
// once; later iterations yield nothing.
func (e *Extractor) Extract(markup string) iter.Seq[Promotion] {
	consumed := false
	return func(yield func(Promotion) bool) {
		if consumed {
			return
		}
		consumed = true

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
		if err != nil {
			e.log.Warn().Err(err).Msg("Unparsable markup, no promotions extracted")
			return
		}

		blocks := e.candidates(doc)
		seen := make(map[string]struct{}, len(blocks))
		for _, block := range blocks {
			promo, ok := e.parseBlock(block)
			if !ok {
				continue
			}
			if _, dup := seen[promo.ID]; dup {
				continue
			}
			seen[promo.ID] = struct{}{}
			if !yield(promo) {
				return
			}
		}
		e.log.Debug().Int("candidates", len(blocks)).Int("promotions", len(seen)).Msg("Extraction finished")
	}
}

// candidates collects the blocks that may hold a promotion: hero sections
// (widened to their hero container when there is one), then articles
func (e *Extractor) candidates(doc *goquery.Document) []*goquery.Selection {
	var blocks []*goquery.Selection

	containerSel := byMarker("div", e.selectors.HeroContainerMarker)
	doc.Find(byMarker("div", e.selectors.HeroMarker)).Each(func(_ int, hero *goquery.Selection) {
		container := hero.ParentsFiltered(containerSel).First()
		if container.Length() > 0 {
			blocks = append(blocks, container)
			return
		}
		blocks = append(blocks, hero)
	})

	doc.Find(e.selectors.Articles).Each(func(_ int, article *goquery.Selection) {
		blocks = append(blocks, article)
	})

	return blocks
}

// parseBlock derives a promotion from one block. ok is false when the block
// is not a promotion or could not be read.
func (e *Extractor) parseBlock(block *goquery.Selection) (promo Promotion, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn().Interface("panic", r).Msg("Skipping unreadable block")
			promo, ok = Promotion{}, false
		}
	}()

	header := block.Find(e.selectors.Headings).First()
	if header.Length() == 0 {
		return Promotion{}, false
	}
	title := strings.TrimSpace(header.Text())
	if title == "" {
		return Promotion{}, false
	}

	details, code := e.parseDetails(block)

	if !strings.Contains(title, e.selectors.PriceMarker) && code == NoCode {
		return Promotion{}, false
	}

	return Promotion{
		ID:       Fingerprint(title),
		Title:    title,
		Details:  details,
		Code:     code,
		ImageURL: e.resolveImage(block.Find("img").First()),
	}, true
}

// parseDetails reads the rich text container. The last paragraph carrying a
// code label wins.
func (e *Extractor) parseDetails(block *goquery.Selection) (string, string) {
	container := block.Find(byMarker("div", e.selectors.DetailsMarker)).First()
	if container.Length() == 0 {
		return "", NoCode
	}

	code := NoCode
	var paragraphs []string
	container.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		paragraphs = append(paragraphs, text)

		if !e.hasCodeLabel(text) {
			return
		}
		if value, found := helpers.AfterFirst(text, ":"); found && value != "" {
			code = value
		}
	})

	return strings.Join(paragraphs, "\n"), code
}

func (e *Extractor) hasCodeLabel(text string) bool {
	for _, label := range e.selectors.CodeLabels {
		if strings.Contains(text, label) {
			return true
		}
	}
	return false
}

// resolveImage picks the widest srcset candidate, falling back to src, and
// makes the result absolute. Data URIs and non-http schemes are dropped.
func (e *Extractor) resolveImage(img *goquery.Selection) string {
	if img.Length() == 0 {
		return ""
	}

	var candidate string
	if srcset := strings.TrimSpace(img.AttrOr("srcset", "")); srcset != "" {
		candidate = e.absolute(lastSrcsetURL(srcset))
	}
	if candidate == "" {
		if src := strings.TrimSpace(img.AttrOr("src", "")); src != "" && !isDataURI(src) {
			candidate = e.absolute(src)
		}
	}
	return candidate
}

// lastSrcsetURL returns the URL token of the last "url descriptor" pair
func lastSrcsetURL(srcset string) string {
	parts := strings.Split(srcset, ",")
	fields := strings.Fields(parts[len(parts)-1])
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func isDataURI(raw string) bool {
	return strings.HasPrefix(strings.ToLower(raw), "data:")
}

// absolute resolves raw against the page URL. Absolute http(s) URLs pass
// through unchanged; anything else with a scheme is rejected.
func (e *Extractor) absolute(raw string) string {
	if raw == "" || isDataURI(raw) {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.Scheme != "" {
		if u.Scheme == "http" || u.Scheme == "https" {
			return u.String()
		}
		return ""
	}
	return e.base.ResolveReference(u).String()
}

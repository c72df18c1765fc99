// Package classify decides whether a sheet is a priced-service table and
// which government pricing system produced it. Scoring is keyword based and
// deliberately tuned for recall: a false positive costs one extra indexed
// chunk, a false negative silently drops real price data.
package classify

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/construdata/precobase/internal/domain"
	"github.com/construdata/precobase/internal/normalize"
	"github.com/construdata/precobase/internal/spreadsheet"
)

const (
	// PricedThreshold is the minimum combined score for a sheet to count
	// as a priced-service table.
	PricedThreshold = 2

	// contentSampleRows bounds how many data rows feed the content score.
	contentSampleRows = 10

	// contentHitThreshold and contentBonus convert raw keyword hits in row
	// content into a fixed bonus instead of a linear count, so verbose
	// sheets do not outscore well-structured ones.
	contentHitThreshold = 3
	contentBonus        = 1

	// maxScore normalizes the combined score into a confidence in [0,1].
	maxScore = 8
)

// tableKeywords are the structural signals of a price table, tested as
// substrings of folded column names and row content.
var tableKeywords = []string{
	"preco",
	"valor",
	"custo",
	"codigo",
	"unidade",
	"quantidade",
	"total",
	"descricao",
	"composicao",
	"servico",
	"item",
}

// Classifier scores sheets and identifies government pricing systems.
type Classifier struct{}

func New() *Classifier {
	return &Classifier{}
}

// Classify scores a single sheet. The structural score counts keyword hits
// across column names; the content score adds a fixed bonus when the first
// rows contain enough keyword hits of their own.
func (c *Classifier) Classify(sheet spreadsheet.Sheet) domain.Classification {
	structural, matched := c.structuralScore(sheet.Headers)
	content, contentMatched := c.contentScore(sheet)

	score := structural + content
	confidence := float64(score) / maxScore
	if confidence > 1 {
		confidence = 1
	}

	return domain.Classification{
		System:         domain.SourceUnknown,
		IsPricedTable:  score >= PricedThreshold,
		Score:          score,
		Confidence:     confidence,
		MatchedSignals: append(matched, contentMatched...),
	}
}

// ClassifyWorkbook classifies every sheet and resolves the workbook-level
// system label, folding it into each per-sheet result.
func (c *Classifier) ClassifyWorkbook(wb *spreadsheet.Workbook) []domain.Classification {
	system := c.IdentifySystem(wb)
	out := make([]domain.Classification, 0, len(wb.Sheets))
	for _, sheet := range wb.Sheets {
		cl := c.Classify(sheet)
		cl.System = system
		out = append(out, cl)
	}
	return out
}

func (c *Classifier) structuralScore(headers []string) (int, []string) {
	score := 0
	var matched []string
	joined := normalize.Fold(strings.Join(headers, " "))
	for _, kw := range tableKeywords {
		if strings.Contains(joined, kw) {
			score++
			matched = append(matched, "header:"+kw)
		}
	}
	return score, matched
}

func (c *Classifier) contentScore(sheet spreadsheet.Sheet) (int, []string) {
	sample := normalize.Fold(sheet.SampleText(contentSampleRows))
	if sample == "" {
		return 0, nil
	}
	hits := 0
	for _, kw := range tableKeywords {
		if strings.Contains(sample, kw) {
			hits++
		}
	}
	if hits < contentHitThreshold {
		return 0, nil
	}
	return contentBonus, []string{"content:keywords"}
}

// IdentifySystem resolves which government system produced the workbook.
// The ORÇAMENTO + CÁLCULO tab pair is a SICONV workbook layout and short
// circuits the signature scan. Otherwise signatures run in a fixed order
// against tab names, column names and sampled content; the first system
// with any match wins. Filename hints refine SINAPI into its regional
// variants.
func (c *Classifier) IdentifySystem(wb *spreadsheet.Workbook) domain.Source {
	if _, ok := wb.FindSheet("orcamento", normalize.Fold); ok {
		if _, ok := wb.FindSheet("calculo", normalize.Fold); ok {
			return domain.SourceSICONV
		}
	}

	var b strings.Builder
	for _, sheet := range wb.Sheets {
		b.WriteString(sheet.Name)
		b.WriteByte(' ')
		b.WriteString(strings.Join(sheet.Headers, " "))
		b.WriteByte(' ')
		b.WriteString(sheet.SampleText(contentSampleRows))
		b.WriteByte(' ')
	}
	b.WriteString(filepath.Base(wb.Path))
	haystack := normalize.Fold(b.String())

	for _, sig := range systemSignatures {
		for _, re := range sig.patterns {
			if re.MatchString(haystack) {
				if sig.system == domain.SourceSINAPI {
					return refineSINAPI(wb.Path)
				}
				return sig.system
			}
		}
	}
	return domain.SourceUnknown
}

// refineSINAPI derives the regional SINAPI variant from the file name. The
// state hint must stand alone as a delimited token; a substring match would
// mislabel names like "sinapi_especial".
func refineSINAPI(path string) domain.Source {
	name := normalize.Fold(filepath.Base(path))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	tokens := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		switch tok {
		case "sp":
			return domain.SourceSINAPISP
		case "ce":
			return domain.SourceSINAPICE
		}
	}
	return domain.SourceSINAPI
}

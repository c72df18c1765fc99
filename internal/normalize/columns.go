package normalize

import "strings"

// Field is one of the canonical columns every priced-service table maps onto.
type Field string

const (
	FieldCode        Field = "code"
	FieldDescription Field = "description"
	FieldUnit        Field = "unit"
	FieldUnitPrice   Field = "unit_price"
)

// Synonym sets per canonical field. Matching is substring-based over folded
// header text, mirroring the column naming observed across SINAPI, SICRO,
// SICONV, CPOS and EMOP exports.
var fieldSynonyms = []struct {
	field Field
	terms []string
}{
	{FieldCode, []string{"codigo", "cod", "item", "numero"}},
	{FieldDescription, []string{"descricao", "desc", "denominacao", "nome", "texto"}},
	{FieldUnit, []string{"unidade", "und", "unid", "medida", "unit"}},
	{FieldUnitPrice, []string{"preco", "valor", "custo", "price", "unitario"}},
}

// ColumnMap records, per canonical field, the index of the raw column that
// supplies it. Missing fields stay at -1 and resolve to empty values rather
// than failing the sheet.
type ColumnMap struct {
	Code        int
	Description int
	Unit        int
	UnitPrice   int
}

// NewColumnMap returns a mapping with every field unassigned.
func NewColumnMap() ColumnMap {
	return ColumnMap{Code: -1, Description: -1, Unit: -1, UnitPrice: -1}
}

// Has reports whether the field was found in the header row.
func (m ColumnMap) Has(f Field) bool {
	return m.index(f) >= 0
}

// Value extracts the field's cell from a data row, or "" when the field is
// unmapped or the row is too short.
func (m ColumnMap) Value(f Field, row []string) string {
	idx := m.index(f)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func (m ColumnMap) index(f Field) int {
	switch f {
	case FieldCode:
		return m.Code
	case FieldDescription:
		return m.Description
	case FieldUnit:
		return m.Unit
	case FieldUnitPrice:
		return m.UnitPrice
	}
	return -1
}

func (m *ColumnMap) assign(f Field, idx int) {
	switch f {
	case FieldCode:
		m.Code = idx
	case FieldDescription:
		m.Description = idx
	case FieldUnit:
		m.Unit = idx
	case FieldUnitPrice:
		m.UnitPrice = idx
	}
}

// MapColumns resolves a raw header row to canonical fields. Each header is
// folded and tested against the synonym sets; the first header matching a
// field claims it and later candidates cannot overwrite the assignment, so
// ambiguity resolves deterministically by column order.
func MapColumns(headers []string) ColumnMap {
	m := NewColumnMap()
	for idx, raw := range headers {
		folded := Fold(raw)
		if folded == "" {
			continue
		}
		for _, syn := range fieldSynonyms {
			if m.Has(syn.field) {
				continue
			}
			if containsAny(folded, syn.terms) {
				m.assign(syn.field, idx)
				break
			}
		}
	}
	return m
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

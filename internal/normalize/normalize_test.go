package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"accents stripped", "DESCRIÇÃO", "descricao"},
		{"whitespace collapsed", "  Preço   Unitário ", "preco unitario"},
		{"already folded", "codigo", "codigo"},
		{"mixed", "Composição de Preços", "composicao de precos"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Fold(tt.in))
		})
	}
}

func TestMapColumns(t *testing.T) {
	t.Run("standard government header", func(t *testing.T) {
		m := MapColumns([]string{"CODIGO", "DESCRICAO", "UNIDADE", "PRECO", "BDI"})
		assert.Equal(t, 0, m.Code)
		assert.Equal(t, 1, m.Description)
		assert.Equal(t, 2, m.Unit)
		assert.Equal(t, 3, m.UnitPrice)
	})

	t.Run("accented and renamed headers", func(t *testing.T) {
		m := MapColumns([]string{"Código", "Denominação do Serviço", "Und", "Valor Unitário"})
		assert.Equal(t, 0, m.Code)
		assert.Equal(t, 1, m.Description)
		assert.Equal(t, 2, m.Unit)
		assert.Equal(t, 3, m.UnitPrice)
	})

	t.Run("description synonyms all map to description", func(t *testing.T) {
		for _, header := range []string{"descricao", "DESC", "Denominacao", "Nome", "texto", "DESCRIÇÃO "} {
			m := MapColumns([]string{header})
			assert.Equal(t, 0, m.Description, "header %q", header)
		}
	})

	t.Run("first match wins and is never overwritten", func(t *testing.T) {
		m := MapColumns([]string{"Preço Unitário", "Valor Total"})
		assert.Equal(t, 0, m.UnitPrice)
	})

	t.Run("missing fields stay unassigned", func(t *testing.T) {
		m := MapColumns([]string{"Nome", "Assinatura"})
		assert.Equal(t, 0, m.Description)
		assert.False(t, m.Has(FieldCode))
		assert.False(t, m.Has(FieldUnit))
		assert.False(t, m.Has(FieldUnitPrice))
	})

	t.Run("value extraction tolerates short rows", func(t *testing.T) {
		m := MapColumns([]string{"CODIGO", "DESCRICAO", "PRECO"})
		row := []string{"87449"}
		assert.Equal(t, "87449", m.Value(FieldCode, row))
		assert.Equal(t, "", m.Value(FieldDescription, row))
		assert.Equal(t, "", m.Value(FieldUnitPrice, row))
	})
}

func TestIsHeaderLike(t *testing.T) {
	tests := []struct {
		name     string
		row      []string
		expected bool
	}{
		{"repeated header", []string{"CODIGO", "DESCRICAO", "PRECO"}, true},
		{"data row with price", []string{"87449", "ALVENARIA", "57,62"}, false},
		{"empty row", []string{"", "", ""}, false},
		{"textual with one number", []string{"item", "12", "texto"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsHeaderLike(tt.row))
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected float64
		ok       bool
	}{
		{"locale thousands", "1.234,56", 1234.56, true},
		{"currency prefix", "R$ 57,62", 57.62, true},
		{"plain decimal point", "1234.56", 1234.56, true},
		{"integer", "120", 120, true},
		{"comma decimal", "57,62", 57.62, true},
		{"dot thousands comma decimal with spaces", " R$ 1.234.567,89 ", 1234567.89, true},
		{"american format", "1,234,567.89", 1234567.89, true},
		{"garbage", "abc", 0, false},
		{"empty", "  ", 0, false},
		{"lone currency", "R$", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := ParsePrice(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.expected, v, 1e-9)
		})
	}
}

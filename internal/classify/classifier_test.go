package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/construdata/precobase/internal/domain"
	"github.com/construdata/precobase/internal/spreadsheet"
)

func TestClassifyPricedTable(t *testing.T) {
	c := New()

	sheet := spreadsheet.Sheet{
		Name:    "ORÇAMENTO",
		Headers: []string{"CODIGO", "DESCRICAO", "UNIDADE", "PRECO", "BDI"},
		Rows: [][]string{
			{"87449", "ALVENARIA DE VEDACAO DE BLOCOS CERAMICOS", "M2", "57,62", "25"},
		},
	}

	cl := c.Classify(sheet)
	assert.True(t, cl.IsPricedTable)
	assert.GreaterOrEqual(t, cl.Score, PricedThreshold)
	assert.NotEmpty(t, cl.MatchedSignals)
	assert.Greater(t, cl.Confidence, 0.0)
	assert.LessOrEqual(t, cl.Confidence, 1.0)
}

func TestClassifyNonPricedSheet(t *testing.T) {
	c := New()

	sheet := spreadsheet.Sheet{
		Name:    "Presenças",
		Headers: []string{"Nome", "Assinatura"},
		Rows: [][]string{
			{"João da Silva", ""},
			{"Maria Souza", ""},
		},
	}

	cl := c.Classify(sheet)
	assert.False(t, cl.IsPricedTable)
	assert.Less(t, cl.Score, PricedThreshold)
}

func TestClassifyMonotonicity(t *testing.T) {
	c := New()

	base := spreadsheet.Sheet{Headers: []string{"CODIGO", "DESCRICAO"}}
	more := spreadsheet.Sheet{Headers: []string{"CODIGO", "DESCRICAO", "UNIDADE", "PRECO", "TOTAL"}}

	assert.GreaterOrEqual(t, c.Classify(more).Score, c.Classify(base).Score)
}

func TestContentBonusIsFixed(t *testing.T) {
	c := New()

	verbose := spreadsheet.Sheet{
		Headers: []string{"A"},
		Rows: [][]string{
			{"preco valor custo codigo unidade quantidade total descricao"},
		},
	}
	terse := spreadsheet.Sheet{
		Headers: []string{"A"},
		Rows: [][]string{
			{"preco valor custo"},
		},
	}

	// Hits above the threshold collapse into one fixed bonus point.
	assert.Equal(t, contentBonus, c.Classify(verbose).Score)
	assert.Equal(t, contentBonus, c.Classify(terse).Score)
}

func TestIdentifySystemBySheetPair(t *testing.T) {
	c := New()

	wb := &spreadsheet.Workbook{
		Path: "/data/obra_prefeitura.xlsx",
		Sheets: []spreadsheet.Sheet{
			{Name: "ORÇAMENTO", Headers: []string{"CODIGO", "DESCRICAO", "UNIDADE", "PRECO", "BDI"}},
			{Name: "CÁLCULO", Headers: []string{"CODIGO", "DESCRICAO", "UNIDADE", "PRECO", "BDI"}},
		},
	}

	assert.Equal(t, domain.SourceSICONV, c.IdentifySystem(wb))
}

func TestIdentifySystemBySignature(t *testing.T) {
	c := New()

	tests := []struct {
		name     string
		wb       *spreadsheet.Workbook
		expected domain.Source
	}{
		{
			"sicro content",
			&spreadsheet.Workbook{
				Path: "/data/tabela.xlsx",
				Sheets: []spreadsheet.Sheet{{
					Name:    "Planilha1",
					Headers: []string{"CODIGO", "DESCRICAO", "PRECO", "FRENTE"},
					Rows:    [][]string{{"M1234", "Tabela SICRO do DNIT", "12,50", "1"}},
				}},
			},
			domain.SourceSICRO,
		},
		{
			"cpos sheet name",
			&spreadsheet.Workbook{
				Path: "/data/tabela.xlsx",
				Sheets: []spreadsheet.Sheet{{
					Name:    "CPOS Boletim 184",
					Headers: []string{"CODIGO", "DESCRICAO", "PRECO"},
				}},
			},
			domain.SourceCPOS,
		},
		{
			"emop content",
			&spreadsheet.Workbook{
				Path: "/data/rj.xlsx",
				Sheets: []spreadsheet.Sheet{{
					Name:    "Planilha1",
					Headers: []string{"CODIGO", "DESCRICAO", "PRECO"},
					Rows:    [][]string{{"01.001", "Empresa Municipal de Obras", "10,00"}},
				}},
			},
			domain.SourceEMOP,
		},
		{
			"no match",
			&spreadsheet.Workbook{
				Path: "/data/agenda.xlsx",
				Sheets: []spreadsheet.Sheet{{
					Name:    "Agenda",
					Headers: []string{"Nome", "Telefone"},
				}},
			},
			domain.SourceUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.IdentifySystem(tt.wb))
		})
	}
}

func TestIdentifySystemFilenameVariants(t *testing.T) {
	c := New()

	tests := []struct {
		path     string
		expected domain.Source
	}{
		{"/data/sinapi_sp_202401.xlsx", domain.SourceSINAPISP},
		{"/data/sinapi_ce_202401.xlsx", domain.SourceSINAPICE},
		{"/data/sinapi_nacional.xlsx", domain.SourceSINAPI},
		// State hints inside larger words do not count.
		{"/data/sinapi_especial.xlsx", domain.SourceSINAPI},
		{"/data/sinapi_terceirizados.xlsx", domain.SourceSINAPI},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			wb := &spreadsheet.Workbook{
				Path: tt.path,
				Sheets: []spreadsheet.Sheet{{
					Name:    "Planilha1",
					Headers: []string{"CODIGO", "DESCRICAO", "UNIDADE", "PRECO", "DATA"},
				}},
			}
			assert.Equal(t, tt.expected, c.IdentifySystem(wb))
		})
	}
}

func TestIdentifySystemOrderTieBreak(t *testing.T) {
	c := New()

	// Both the sinapi and sicro signatures match; enumeration order wins.
	wb := &spreadsheet.Workbook{
		Path: "/data/misto.xlsx",
		Sheets: []spreadsheet.Sheet{{
			Name:    "Planilha1",
			Headers: []string{"CODIGO", "DESCRICAO", "PRECO"},
			Rows:    [][]string{{"1", "Referência SINAPI e SICRO", "1,00"}},
		}},
	}

	assert.Equal(t, domain.SourceSINAPI, c.IdentifySystem(wb))
}

func TestClassifyWorkbook(t *testing.T) {
	c := New()

	wb := &spreadsheet.Workbook{
		Path: "/data/sinapi.xlsx",
		Sheets: []spreadsheet.Sheet{
			{Name: "Preços", Headers: []string{"CODIGO", "DESCRICAO", "UNIDADE", "PRECO"}},
			{Name: "Notas", Headers: []string{"Observações"}},
		},
	}

	results := c.ClassifyWorkbook(wb)
	require.Len(t, results, 2)
	assert.Equal(t, domain.SourceSINAPI, results[0].System)
	assert.Equal(t, domain.SourceSINAPI, results[1].System)
	assert.True(t, results[0].IsPricedTable)
	assert.False(t, results[1].IsPricedTable)
}

package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/construdata/precobase/internal/domain"
	"github.com/construdata/precobase/internal/spreadsheet"
)

func fixedExtractor() *Extractor {
	return &Extractor{now: func() time.Time {
		return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	}}
}

func pricedClassification(system domain.Source) domain.Classification {
	return domain.Classification{System: system, IsPricedTable: true, Score: 4}
}

func TestSheetExtractsServicesAndChunks(t *testing.T) {
	e := fixedExtractor()

	wb := &spreadsheet.Workbook{Path: "/data/sinapi_sp.xlsx"}
	sheet := spreadsheet.Sheet{
		Name:    "Preços",
		Headers: []string{"CODIGO", "DESCRICAO", "UNIDADE", "PRECO"},
		Rows: [][]string{
			{"87449", "ALVENARIA DE VEDACAO DE BLOCOS CERAMICOS", "M2", "57,62"},
			{"87450", "CHAPISCO APLICADO EM ALVENARIA DE VEDACAO", "M2", "R$ 4,31"},
		},
	}

	res := e.Sheet(wb, sheet, pricedClassification(domain.SourceSINAPISP))
	require.Len(t, res.Services, 2)
	require.Len(t, res.Chunks, 2)
	assert.Zero(t, res.Rejected)

	svc := res.Services[0]
	assert.Equal(t, domain.SourceSINAPISP, svc.Source)
	assert.Equal(t, "87449", svc.ServiceCode)
	assert.Equal(t, "M2", svc.Unit)
	assert.InDelta(t, 57.62, svc.Value, 1e-9)
	assert.True(t, svc.IsLoaded)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), svc.BaseDate)

	chunk := res.Chunks[0]
	assert.Equal(t, domain.ChunkID("sinapi_sp.xlsx", "Preços", 1), chunk.ID)
	assert.Equal(t, domain.SourceSINAPISP, chunk.Classification)
	assert.Contains(t, chunk.Document, "Arquivo: sinapi_sp.xlsx")
	assert.Contains(t, chunk.Document, "Planilha: Preços")
	assert.Contains(t, chunk.Document, "Linha: 1")
	assert.Contains(t, chunk.Document, "CODIGO: 87449")
	assert.Contains(t, chunk.Document, "PRECO: 57,62")
}

func TestSheetIdempotentChunkIDs(t *testing.T) {
	e := fixedExtractor()

	wb := &spreadsheet.Workbook{Path: "/data/sinapi.xlsx"}
	sheet := spreadsheet.Sheet{
		Name:    "Preços",
		Headers: []string{"CODIGO", "DESCRICAO", "PRECO"},
		Rows: [][]string{
			{"87449", "ALVENARIA DE VEDACAO DE BLOCOS", "57,62"},
		},
	}
	cl := pricedClassification(domain.SourceSINAPI)

	first := e.Sheet(wb, sheet, cl)
	second := e.Sheet(wb, sheet, cl)
	require.Len(t, first.Chunks, 1)
	assert.Equal(t, first.Chunks[0].ID, second.Chunks[0].ID)
}

func TestSheetInvalidRowsKeptAsChunksOnly(t *testing.T) {
	e := fixedExtractor()

	wb := &spreadsheet.Workbook{Path: "/data/sinapi.xlsx"}
	sheet := spreadsheet.Sheet{
		Name:    "Preços",
		Headers: []string{"CODIGO", "DESCRICAO", "PRECO"},
		Rows: [][]string{
			{"87449", "ALVENARIA DE VEDACAO DE BLOCOS", "57,62"},
			{"87450", "CHAPISCO APLICADO EM ALVENARIA", "abc"},
			{"", "SEM CODIGO NENHUM AQUI MESMO", "10,00"},
			{"87451", "curta", "10,00"},
		},
	}

	res := e.Sheet(wb, sheet, pricedClassification(domain.SourceSINAPI))
	assert.Len(t, res.Chunks, 4)
	require.Len(t, res.Services, 1)
	assert.Equal(t, "87449", res.Services[0].ServiceCode)
	assert.Equal(t, 3, res.Rejected)
}

func TestSheetSkipsSecondHeaderRow(t *testing.T) {
	e := fixedExtractor()

	wb := &spreadsheet.Workbook{Path: "/data/sinapi.xlsx"}
	sheet := spreadsheet.Sheet{
		Name:    "Preços",
		Headers: []string{"CODIGO", "DESCRICAO", "PRECO"},
		Rows: [][]string{
			{"CODIGO", "DESCRICAO", "PRECO"},
			{"87449", "ALVENARIA DE VEDACAO DE BLOCOS", "57,62"},
		},
	}

	res := e.Sheet(wb, sheet, pricedClassification(domain.SourceSINAPI))
	require.Len(t, res.Chunks, 1)
	assert.Equal(t, 1, res.Chunks[0].RowIndex)
	require.Len(t, res.Services, 1)
}

func TestSheetNonPricedProducesNothing(t *testing.T) {
	e := fixedExtractor()

	wb := &spreadsheet.Workbook{Path: "/data/agenda.xlsx"}
	sheet := spreadsheet.Sheet{
		Name:    "Agenda",
		Headers: []string{"Nome", "Telefone"},
		Rows:    [][]string{{"João", "11 99999-0000"}},
	}

	res := e.Sheet(wb, sheet, domain.Classification{System: domain.SourceUnknown})
	assert.Empty(t, res.Chunks)
	assert.Empty(t, res.Services)
}

func TestSheetSICONVAppliesBDI(t *testing.T) {
	e := fixedExtractor()

	wb := &spreadsheet.Workbook{Path: "/data/convenio.xlsx"}
	sheet := spreadsheet.Sheet{
		Name:    "ORÇAMENTO",
		Headers: []string{"CODIGO", "DESCRICAO", "UNIDADE", "PRECO", "BDI"},
		Rows: [][]string{
			{"87449", "ALVENARIA DE VEDACAO DE BLOCOS", "M2", "100,00", "25"},
		},
	}

	res := e.Sheet(wb, sheet, pricedClassification(domain.SourceSICONV))
	require.Len(t, res.Services, 1)
	assert.InDelta(t, 125.0, res.Services[0].Value, 1e-9)
}

func TestSheetDateColumn(t *testing.T) {
	e := fixedExtractor()

	wb := &spreadsheet.Workbook{Path: "/data/sinapi.xlsx"}
	sheet := spreadsheet.Sheet{
		Name:    "Preços",
		Headers: []string{"CODIGO", "DESCRICAO", "PRECO", "DATA"},
		Rows: [][]string{
			{"87449", "ALVENARIA DE VEDACAO DE BLOCOS", "57,62", "01/2024"},
			{"87450", "CHAPISCO APLICADO EM ALVENARIA", "4,31", "invalida"},
		},
	}

	res := e.Sheet(wb, sheet, pricedClassification(domain.SourceSINAPI))
	require.Len(t, res.Services, 2)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), res.Services[0].BaseDate)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), res.Services[1].BaseDate)
}

func TestWorkbookMergesSheets(t *testing.T) {
	e := fixedExtractor()

	wb := &spreadsheet.Workbook{
		Path: "/data/convenio.xlsx",
		Sheets: []spreadsheet.Sheet{
			{
				Name:    "ORÇAMENTO",
				Headers: []string{"CODIGO", "DESCRICAO", "UNIDADE", "PRECO", "BDI"},
				Rows:    [][]string{{"87449", "ALVENARIA DE VEDACAO DE BLOCOS", "M2", "100,00", "0"}},
			},
			{
				Name:    "CÁLCULO",
				Headers: []string{"CODIGO", "DESCRICAO", "UNIDADE", "PRECO", "BDI"},
				Rows:    [][]string{{"87450", "CHAPISCO APLICADO EM ALVENARIA", "M2", "4,31", "0"}},
			},
		},
	}
	cls := []domain.Classification{
		pricedClassification(domain.SourceSICONV),
		pricedClassification(domain.SourceSICONV),
	}

	res := e.Workbook(wb, cls)
	assert.Len(t, res.Services, 2)
	assert.Len(t, res.Chunks, 2)
	for _, svc := range res.Services {
		assert.True(t, svc.IsLoaded)
		assert.Equal(t, domain.SourceSICONV, svc.Source)
	}
}

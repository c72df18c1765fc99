package classify

import (
	"regexp"

	"github.com/construdata/precobase/internal/domain"
)

// systemSignatures is deliberately a slice, not a map: when signatures of
// two systems both match, the earlier entry wins, and that priority must
// not depend on map iteration order. Patterns are written against folded
// text (lower case, accents stripped).
var systemSignatures = []struct {
	system   domain.Source
	patterns []*regexp.Regexp
}{
	{
		system: domain.SourceSINAPI,
		patterns: compile(
			`sinapi`,
			`sistema.*nacional.*pesquisa.*custos`,
			`caixa.*economica.*federal`,
			`precos.*unitarios`,
		),
	},
	{
		system: domain.SourceSICRO,
		patterns: compile(
			`sicro`,
			`sistema.*custos.*rodoviarios`,
			`dnit`,
			`rodovias`,
		),
	},
	{
		system: domain.SourceSICONV,
		patterns: compile(
			`siconv`,
			`sistema.*convenios`,
			`convenios.*transferencia`,
			`governo.*federal`,
		),
	},
	{
		system: domain.SourceCPOS,
		patterns: compile(
			`cpos`,
			`composicao.*precos.*servicos`,
			`composicoes.*precos`,
		),
	},
	{
		system: domain.SourceEMOP,
		patterns: compile(
			`emop`,
			`empresa.*municipal.*obras`,
			`prefeitura.*municipal`,
		),
	},
}

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

package domain

// ServiceQuery is a structured search over the services table. Terms use AND
// semantics: every term must match the description or the code. Source is an
// exact match and Code a substring match after punctuation stripping.
type ServiceQuery struct {
	Terms  []string
	Source Source
	Code   string
	Limit  int
}

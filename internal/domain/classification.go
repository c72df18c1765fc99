package domain

// Classification is the transient result of scoring one sheet. It is not
// persisted on its own; the orchestrator folds it into the ProcessedFile
// record and into chunk metadata.
type Classification struct {
	System         Source
	IsPricedTable  bool
	Score          int
	Confidence     float64
	MatchedSignals []string
}

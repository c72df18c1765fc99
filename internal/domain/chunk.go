package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Chunk is one retrievable unit of text indexed for semantic search. A chunk
// carries a human-readable rendering of a single spreadsheet row plus enough
// metadata to trace it back to its origin.
type Chunk struct {
	ID             string
	Document       string
	File           string
	Sheet          string
	RowIndex       int
	Classification Source
}

// ChunkID derives the deterministic chunk identifier from a row's origin.
// Re-ingesting an unchanged file therefore produces identical ids, which the
// vector store resolves as an upsert rather than a duplicate.
func ChunkID(file, sheet string, rowIndex int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", file, sheet, rowIndex)))
	return hex.EncodeToString(sum[:16])
}

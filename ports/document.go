package ports

import (
	"context"

	"datasense/domain/document"
)

// DocumentAnalyzer extracts themes, sentiment, keywords and a summary from document text.
// Implementations may call a remote model or run locally.
type DocumentAnalyzer interface {
	AnalyzeDocument(ctx context.Context, text string) (*document.Document, error)
}

// Narrator turns a markdown analysis brief into a short prose narrative
type Narrator interface {
	Narrate(ctx context.Context, brief string) (string, error)
}

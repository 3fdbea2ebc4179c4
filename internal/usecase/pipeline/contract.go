package pipeline

import (
	"context"

	"github.com/kailas-cloud/twinrag/internal/domain"
)

// Enhancer rewrites the question for retrieval. Failures are absorbed and
// reported through the outcome, never as an error.
type Enhancer interface {
	Enhance(ctx context.Context, question string) (string, domain.StageOutcome)
}

// Retriever embeds the query and assembles the retrieved context.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) (domain.RetrievalContext, error)
}

// Generator produces the first-person answer. An empty retrievalContext
// selects direct persona-context generation.
type Generator interface {
	Answer(ctx context.Context, question, retrievalContext string) (string, error)
}

// Formatter polishes the answer for an interview setting. Failures are
// absorbed and reported through the outcome.
type Formatter interface {
	Format(ctx context.Context, answer, question string) (string, domain.StageOutcome)
}

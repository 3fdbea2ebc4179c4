package domain

import "errors"

var (
	// ErrQuestionRequired signals a missing or blank question.
	ErrQuestionRequired = errors.New("question is required")
	// ErrNoInformation signals a retrieval that matched nothing.
	ErrNoInformation = errors.New("no matching profile information")
	// ErrNoExtractableText signals matches whose metadata carried no usable text.
	ErrNoExtractableText = errors.New("matches lack extractable text")
	// ErrGenerationFailed signals that answer generation exhausted all providers.
	ErrGenerationFailed = errors.New("answer generation failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrChatProviderError signals a chat completion provider failure.
	ErrChatProviderError = errors.New("chat provider error")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
)

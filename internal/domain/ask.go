package domain

// Canned answers for degraded retrieval, returned without invoking the
// generation stage.
const (
	// NoInformationAnswer is returned when retrieval matches nothing.
	NoInformationAnswer = "I don't have specific information about that topic."
	// NoExtractableTextAnswer is returned when matches carry no usable text.
	NoExtractableTextAnswer = "I found some information but couldn't extract details."
)

// AskRequest is one question through the pipeline. Each request is fully
// independent: no session, no conversation memory.
type AskRequest struct {
	Question       string
	EnhanceQuery   bool
	FormatResponse bool
	TopK           int
}

// AskResult is the pipeline output. EnhancedQuestion is set only when
// enhancement was requested; Enhance and Format report each optional stage's
// outcome.
type AskResult struct {
	Answer           string
	OriginalQuestion string
	EnhancedQuestion string
	Enhance          StageOutcome
	Format           StageOutcome
	Matches          int
}

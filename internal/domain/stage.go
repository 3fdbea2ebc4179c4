package domain

// StageStatus reports what happened to an optional pipeline stage.
type StageStatus string

const (
	// StageSkipped means the stage was never requested.
	StageSkipped StageStatus = "skipped"
	// StageApplied means the stage ran and its output was used.
	StageApplied StageStatus = "applied"
	// StageFellBack means the stage failed and the unmodified input was used.
	StageFellBack StageStatus = "fell_back"
)

// StageOutcome distinguishes "stage skipped" from "stage fell back due to
// failure" — callers and tests can tell the two apart instead of both looking
// like a pass-through.
type StageOutcome struct {
	Status StageStatus
	Reason string
}

// Skipped reports a stage that was not requested.
func Skipped() StageOutcome { return StageOutcome{Status: StageSkipped} }

// Applied reports a stage that ran successfully.
func Applied() StageOutcome { return StageOutcome{Status: StageApplied} }

// FellBack reports a stage that failed and was absorbed locally.
func FellBack(reason string) StageOutcome {
	return StageOutcome{Status: StageFellBack, Reason: reason}
}

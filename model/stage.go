package model

// Stage marks how far a pipeline run has progressed. Stages are totally
// ordered; a context's CompletedStage never regresses within a retry chain.
type Stage int

const (
	StageNone Stage = iota
	StageTextExtracted
	StageClassified
	StageExtracted
	StageDifficultExpressionsExtracted
	StageSimplified
	StageTranslated
	StageSummarized
	StageCompleted
)

var stageNames = map[Stage]string{
	StageNone:                          "NONE",
	StageTextExtracted:                 "TEXT_EXTRACTED",
	StageClassified:                    "CLASSIFIED",
	StageExtracted:                     "EXTRACTED",
	StageDifficultExpressionsExtracted: "DIFFICULT_EXPRESSIONS_EXTRACTED",
	StageSimplified:                    "SIMPLIFIED",
	StageTranslated:                    "TRANSLATED",
	StageSummarized:                    "SUMMARIZED",
	StageCompleted:                     "COMPLETED",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Stage names used in failure reporting and audit logs. These identify the
// unit of work, not the marker reached after it.
const (
	StageNameTextExtraction = "TEXT_EXTRACTION"
	StageNameClassification = "CLASSIFICATION"
	StageNameExtraction     = "EXTRACTION"
	StageNameExpressions    = "DIFFICULT_EXPRESSIONS"
	StageNameSimplification = "SIMPLIFICATION"
	StageNameTranslation    = "TRANSLATION"
	StageNameSummarization  = "SUMMARIZATION"
)

// Package tutor holds the instructional session model: intent
// classification, framework drafting, feedback analysis and the in-memory
// session state the chat service drives.
package tutor

// Intent is one of the five opening-message categories
type Intent string

const (
	IntentInformationRetrieval Intent = "Information Retrieval"
	IntentProblemSolving       Intent = "Problem Solving"
	IntentLearning             Intent = "Learning"
	IntentContentCreation      Intent = "Content Creation"
	IntentLeisure              Intent = "Leisure"
)

// Intents lists every category in prompt order
var Intents = []Intent{
	IntentInformationRetrieval,
	IntentProblemSolving,
	IntentLearning,
	IntentContentCreation,
	IntentLeisure,
}

// Classification is the structured result of intent classification
type Classification struct {
	Intent     Intent  `json:"intent" validate:"required,oneof='Information Retrieval' 'Problem Solving' Learning 'Content Creation' Leisure" jsonschema:"enum=Information Retrieval,enum=Problem Solving,enum=Learning,enum=Content Creation,enum=Leisure"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1" jsonschema:"minimum=0,maximum=1"`
	Reason     string  `json:"reason" jsonschema:"description=Classification reason in one sentence"`
}

// FallbackClassification is used whenever classification fails
var FallbackClassification = Classification{
	Intent:     IntentLearning,
	Confidence: 0.5,
	Reason:     "fallback due to error",
}

// Framework is the drafted analysis and design stages
type Framework struct {
	Analysis string `json:"analysis_content" validate:"required" jsonschema:"description=Analysis stage"`
	Design   string `json:"design_content" validate:"required" jsonschema:"description=Design stage"`
}

// FeedbackStatus labels a follow-up message
type FeedbackStatus string

const (
	// StatusProgress is normal learning progression
	StatusProgress FeedbackStatus = "progress"
	// StatusEvaluation asks for the guiding instruction to be revised
	StatusEvaluation FeedbackStatus = "evaluation"
)

// FeedbackResult is the structured result of feedback analysis
type FeedbackResult struct {
	Status              FeedbackStatus `json:"status" validate:"required,oneof=progress evaluation" jsonschema:"enum=progress,enum=evaluation"`
	Reason              string         `json:"reason" jsonschema:"description=Detailed reason for the status"`
	SuggestedAdjustment string         `json:"suggested_adjustment,omitempty" jsonschema:"description=Adjustment to the analysis and design content when status is evaluation"`
}

// FallbackFeedback is used whenever feedback analysis fails
var FallbackFeedback = FeedbackResult{
	Status: StatusProgress,
	Reason: "fallback due to error",
}

// NeedsAmendment reports whether the result carries an adjustment to apply
func (r FeedbackResult) NeedsAmendment() bool {
	return r.Status == StatusEvaluation && hasContent(r.SuggestedAdjustment)
}

// CallParams are the sampling settings for one kind of model call
type CallParams struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

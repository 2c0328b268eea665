package tutor

import (
	"fmt"
	"strings"

	"github.com/Rrens/tutor-chat/internal/llm"
)

// CasualInstruction is the guiding instruction for every non-learning intent
const CasualInstruction = "You are a friendly and helpful assistant. Answer clearly and conversationally, " +
	"use markdown for formatting and LaTeX for mathematical expressions when needed."

const draftRules = `Important Notes:
1. You must include both [Analysis Stage] and [Design Stage] sections.
2. Each section must follow the format above.
3. Do not omit or modify the content.
4. Please follow the JSON format exactly.`

const intentTemplate = `Classify the intent of the following user input.

User Input: %s

Please classify into one of the following 5 types:

1. **Information Retrieval**: Requests for existing facts or information
   Examples: "Women's World Cup schedule", "Unemployment rate statistics by country"

2. **Problem Solving**: Mathematical, logical operations or transformations
   Examples: "Interest rate comparison", "Distance between point and line calculation", "Chinese to English translation"

3. **Learning**: Requests aimed at understanding concepts or phenomena
   Examples: "Explain the difference between GPT-3 and GPT-4", "Explain non-Newtonian fluids", "Learn about structural system types"

4. **Content Creation**: Writing or editing requests for specific purposes
   Examples: "Write an introduction about geothermal energy", "Edit report sentences", "Change poem to different format"

5. **Leisure**: Leisure activities or casual conversation with the assistant
   Examples: "Tell me a romantic story", "Let's play a word game"

Respond with a single JSON object matching this schema:
%s`

const draftTemplate = `Generate a system prompt for the 'Analysis' and 'Design' stages of the ADDIE model to solve the following user request%s.
%s
User's Request: %s
User's Background: %s
Learning Environment: %s

Output Format: respond with a single JSON object matching this schema, where analysis_content holds the [Analysis Stage] and design_content holds the [Design Stage]:
%s

%s`

const teachingTemplate = `You are an AI tutor who uses the ADDIE model to teach users in a conversational and engaging way.
Based on the following analysis and design, provide personalized and interactive responses.

[Analysis Stage]
%s

[Design Stage]
%s

[Teaching Guidelines]
1. Start with a friendly greeting and ask about the user's prior knowledge
2. Use a conversational tone throughout the interaction
3. Break down complex concepts into digestible parts
4. Encourage active participation through questions and discussions
5. Provide real-world examples and analogies
6. Adapt the pace and depth based on user's responses
7. Use visual aids and formatting to enhance understanding
8. Regularly check for understanding and provide feedback

[Response Format]
- Write in a natural, conversational style
- Use markdown for formatting
- Include LaTeX for mathematical expressions when needed
- Break down information into smaller, manageable chunks
- End each response with a question or prompt for user engagement

[Feedback Integration]
- Monitor user's understanding and interest level
- Adjust content and approach based on user's responses
- Provide constructive feedback and encouragement
- Suggest related topics or deeper exploration when appropriate
`

const feedbackTemplate = `Analyze the user's feedback and current learning context to provide a more engaging and personalized learning experience.

Current Learning Context: %s

User Feedback: %s

Respond with a single JSON object matching this schema:
%s

Important Notes:
1. Consider both the current learning context and the user's feedback holistically
2. "progress" means normal learning progression
3. "evaluation" indicates need for change in the analysis and design content
4. Include specific suggestions for improvement in suggested_adjustment
5. Consider the user's engagement level when making recommendations`

// Background describes the learner for the drafting prompt
type Background struct {
	Learner     string
	Environment string
}

// DefaultBackground is used when no learner background is configured
var DefaultBackground = Background{
	Learner:     "The learner is studying independently and wants a clear, structured explanation.",
	Environment: "The learning will take place exclusively through conversation with a chatbot.",
}

func (b Background) withDefaults() Background {
	if strings.TrimSpace(b.Learner) == "" {
		b.Learner = DefaultBackground.Learner
	}
	if strings.TrimSpace(b.Environment) == "" {
		b.Environment = DefaultBackground.Environment
	}
	return b
}

// IntentPrompt builds the classification request for the opening message
func IntentPrompt(input string) string {
	return fmt.Sprintf(intentTemplate, input, llm.SchemaFor(&Classification{}))
}

// DraftPrompt builds the framework drafting request. The reference document
// is embedded only when non-empty.
func DraftPrompt(request, reference string, bg Background) string {
	bg = bg.withDefaults()

	using := ""
	refBlock := ""
	if hasContent(reference) {
		using = " using the reference document"
		refBlock = "\nReferences: " + reference + "\n"
	}

	return fmt.Sprintf(draftTemplate,
		using,
		refBlock,
		request,
		bg.Learner,
		bg.Environment,
		llm.SchemaFor(&Framework{}),
		draftRules,
	)
}

// TeachingInstruction synthesizes the guiding instruction from a framework
func TeachingInstruction(f Framework) string {
	return fmt.Sprintf(teachingTemplate, f.Analysis, f.Design)
}

// FeedbackPrompt builds the per-turn feedback analysis request
func FeedbackPrompt(currentContext, feedback string) string {
	return fmt.Sprintf(feedbackTemplate, currentContext, feedback, llm.SchemaFor(&FeedbackResult{}))
}

func hasContent(s string) bool {
	return strings.TrimSpace(s) != ""
}

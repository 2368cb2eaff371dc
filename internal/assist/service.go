package assist

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"augenblick-backend/internal/documents"
	"augenblick-backend/internal/llm"
	"augenblick-backend/internal/shared/telemetry"
)

const rewriteInstruction = "You are an AI assistant that helps users modify text based on their specific requests. " +
	"You will be given an input text as context and a user request specifying the type of modification needed. " +
	"Your task is to apply the requested changes while maintaining coherence, clarity, and natural language flow. " +
	"Ensure that the modified text aligns with the given instructions while preserving the original meaning unless stated otherwise.\n\n" +
	"Examples of modifications include:\n\n" +
	"Making the text more formal or informal\n" +
	"Simplifying complex sentences for better readability\n" +
	"Enhancing conciseness or expanding details\n" +
	"Improving grammar, clarity, and fluency\n" +
	"Adapting the tone for a specific audience\n" +
	"Always return only the modified text without additional commentary unless explicitly requested. " +
	"If the user's request is unclear, seek clarification before proceeding"

const grammarInstruction = "You will receive a piece of text. Identify the parts that contain grammatical errors " +
	"and provide corrections. Output two arrays with incorrect and correct parts in the same order of occurrence. " +
	"Maintain the original meaning while ensuring grammatical correctness."

var defaultConfig = llm.GenerationConfig{
	Temperature:     1,
	TopP:            0.95,
	TopK:            40,
	MaxOutputTokens: 8192,
}

// jsonBlobPattern extracts the outermost JSON object from provider output
// that may wrap it in prose or code fences.
var jsonBlobPattern = regexp.MustCompile(`(?s)\{.*\}`)

// GrammarReport pairs detected errors with their corrections by index.
type GrammarReport struct {
	Incorrect []string `json:"incorrect"`
	Correct   []string `json:"correct"`
}

// Service provides LLM-backed writing assistance: freeform rewrites and
// grammar checks over document text.
type Service struct {
	llm  llm.Client
	docs *documents.Service
}

func NewService(client llm.Client, docs *documents.Service) *Service {
	return &Service{llm: client, docs: docs}
}

// Rewrite transforms content per the user's instruction and returns the full
// replacement text. Output is returned verbatim; the caller decides whether
// to adopt it.
func (s *Service) Rewrite(ctx context.Context, content, instruction string) (string, error) {
	if strings.TrimSpace(instruction) == "" {
		return "", documents.ErrInvalidInput
	}
	return s.llm.Generate(ctx, rewriteInstruction, content+"\n"+instruction, defaultConfig)
}

// CheckGrammar analyzes content and returns paired error/correction arrays.
// Provider output that contains no parseable JSON object yields an empty
// report rather than an error: an unusable analysis means no suggestions.
func (s *Service) CheckGrammar(ctx context.Context, content string) (GrammarReport, error) {
	empty := GrammarReport{Incorrect: []string{}, Correct: []string{}}

	prompt := `Analyze this text for grammar errors and return a JSON response in this exact format: ` +
		`{"incorrect": ["error1", "error2"], "correct": ["correction1", "correction2"]}. Text to analyze: ` + content

	raw, err := s.llm.Generate(ctx, grammarInstruction, prompt, defaultConfig)
	if err != nil {
		return empty, err
	}

	blob := jsonBlobPattern.FindString(raw)
	if blob == "" {
		telemetry.Warn("no JSON object in grammar response", map[string]any{
			"responseLength": len(raw),
		})
		return empty, nil
	}

	var report GrammarReport
	if err := json.Unmarshal([]byte(blob), &report); err != nil {
		telemetry.Warn("failed to parse grammar response", map[string]any{
			"error": err.Error(),
		})
		return empty, nil
	}
	if report.Incorrect == nil {
		report.Incorrect = []string{}
	}
	if report.Correct == nil {
		report.Correct = []string{}
	}
	return report, nil
}

// ApplyCorrection replaces the first occurrence of incorrect with correct in
// the document content and persists the result under the user's name. The
// new content is returned so clients can refresh their editor state.
func (s *Service) ApplyCorrection(ctx context.Context, docID string, user documents.Identity, incorrect, correct string) (string, time.Time, error) {
	if incorrect == "" {
		return "", time.Time{}, documents.ErrInvalidInput
	}

	doc, err := s.docs.Load(ctx, docID, user)
	if err != nil {
		return "", time.Time{}, err
	}

	updated := strings.Replace(doc.Content, incorrect, correct, 1)
	savedAt, err := s.docs.Save(ctx, docID, user, updated)
	if err != nil {
		return "", time.Time{}, err
	}
	return updated, savedAt, nil
}

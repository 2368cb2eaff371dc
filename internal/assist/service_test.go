package assist_test

import (
	"context"
	"errors"
	"testing"

	"augenblick-backend/internal/assist"
	"augenblick-backend/internal/documents"
	"augenblick-backend/internal/llm"
)

type scriptedLLM struct {
	response string
	err      error
	prompts  []string
	systems  []string
}

func (l *scriptedLLM) Generate(ctx context.Context, systemInstruction, prompt string, cfg llm.GenerationConfig) (string, error) {
	l.systems = append(l.systems, systemInstruction)
	l.prompts = append(l.prompts, prompt)
	return l.response, l.err
}

var owner = documents.Identity{ID: "user-1", DisplayName: "Ada", Email: "ada@example.com"}

func TestRewriteAppendsInstructionToContent(t *testing.T) {
	client := &scriptedLLM{response: "Formal version."}
	svc := assist.NewService(client, nil)

	out, err := svc.Rewrite(context.Background(), "hey there", "make this formal")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if out != "Formal version." {
		t.Fatalf("unexpected output %q", out)
	}
	if len(client.prompts) != 1 || client.prompts[0] != "hey there\nmake this formal" {
		t.Fatalf("unexpected prompt %q", client.prompts)
	}
}

func TestRewriteRequiresInstruction(t *testing.T) {
	svc := assist.NewService(&scriptedLLM{}, nil)

	_, err := svc.Rewrite(context.Background(), "content", "  ")
	if !errors.Is(err, documents.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCheckGrammarParsesWrappedJSON(t *testing.T) {
	client := &scriptedLLM{
		response: "Here is the analysis:\n```json\n{\"incorrect\": [\"he go\"], \"correct\": [\"he goes\"]}\n```",
	}
	svc := assist.NewService(client, nil)

	report, err := svc.CheckGrammar(context.Background(), "he go to school")
	if err != nil {
		t.Fatalf("CheckGrammar: %v", err)
	}
	if len(report.Incorrect) != 1 || report.Incorrect[0] != "he go" {
		t.Fatalf("unexpected incorrect: %v", report.Incorrect)
	}
	if len(report.Correct) != 1 || report.Correct[0] != "he goes" {
		t.Fatalf("unexpected correct: %v", report.Correct)
	}
}

func TestCheckGrammarDegradesToEmptyReport(t *testing.T) {
	cases := []struct {
		name     string
		response string
	}{
		{"no json object", "The text looks fine to me."},
		{"malformed json", "{\"incorrect\": [unterminated"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := assist.NewService(&scriptedLLM{response: tc.response}, nil)

			report, err := svc.CheckGrammar(context.Background(), "some text")
			if err != nil {
				t.Fatalf("unusable analysis must not fail: %v", err)
			}
			if len(report.Incorrect) != 0 || len(report.Correct) != 0 {
				t.Fatalf("expected empty report, got %+v", report)
			}
			if report.Incorrect == nil || report.Correct == nil {
				t.Fatalf("arrays must be non-nil for JSON encoding")
			}
		})
	}
}

func TestCheckGrammarPropagatesProviderError(t *testing.T) {
	svc := assist.NewService(&scriptedLLM{err: llm.ErrNotConfigured}, nil)

	_, err := svc.CheckGrammar(context.Background(), "text")
	if !errors.Is(err, llm.ErrNotConfigured) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestApplyCorrectionReplacesFirstOccurrenceAndSaves(t *testing.T) {
	repo := documents.NewMemoryRepo(documents.NewBroker())
	docs := documents.NewService(repo, nil)
	svc := assist.NewService(&scriptedLLM{}, docs)
	ctx := context.Background()

	if _, err := docs.Save(ctx, "doc-1", owner, "he go to school and he go home"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	content, savedAt, err := svc.ApplyCorrection(ctx, "doc-1", owner, "he go", "he goes")
	if err != nil {
		t.Fatalf("ApplyCorrection: %v", err)
	}
	if content != "he goes to school and he go home" {
		t.Fatalf("expected only first occurrence replaced, got %q", content)
	}
	if savedAt.IsZero() {
		t.Fatalf("expected save timestamp")
	}

	doc, _ := repo.Get(ctx, "doc-1")
	if doc.Content != content {
		t.Fatalf("correction must be persisted")
	}
}

func TestApplyCorrectionMissingSpanStillSaves(t *testing.T) {
	repo := documents.NewMemoryRepo(documents.NewBroker())
	docs := documents.NewService(repo, nil)
	svc := assist.NewService(&scriptedLLM{}, docs)
	ctx := context.Background()

	if _, err := docs.Save(ctx, "doc-1", owner, "all good here"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	content, _, err := svc.ApplyCorrection(ctx, "doc-1", owner, "not present", "x")
	if err != nil {
		t.Fatalf("ApplyCorrection: %v", err)
	}
	if content != "all good here" {
		t.Fatalf("content must be unchanged when span is absent, got %q", content)
	}
}

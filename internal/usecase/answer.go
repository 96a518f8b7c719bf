package usecase

import (
	"fmt"
	"strings"

	"docrag/internal/domain"
	"docrag/internal/port"
)

// NoDocumentsMessage is returned when retrieval finds nothing; the
// language model is never called in that case.
const NoDocumentsMessage = "No relevant documents found. Please upload documents first."

// llmFailureMessage is the user-safe text returned when the language
// model provider fails; the error detail rides alongside it.
const llmFailureMessage = "Error generating response. Please try again later."

// DefaultDirectives describes the expected output format when the caller
// supplies none.
const DefaultDirectives = "Format the answer as well-structured Markdown: short paragraphs, bullet lists where they help, and bold key terms."

// AnswerUseCase is the retrieval-augmented query orchestrator: search the
// vector store, assemble a grounded prompt, and invoke the language model.
type AnswerUseCase struct {
	store port.VectorStore
	llm   port.LLM
	topK  int
}

// NewAnswerUseCase creates an answer use case. topK is the retrieval
// depth used when callers pass k <= 0.
func NewAnswerUseCase(store port.VectorStore, llm port.LLM, topK int) *AnswerUseCase {
	if topK <= 0 {
		topK = 4
	}
	return &AnswerUseCase{
		store: store,
		llm:   llm,
		topK:  topK,
	}
}

// Answer retrieves the top-k chunks for the question and asks the model
// for a grounded answer. Language-model failures degrade to a well-formed
// fallback answer rather than an error; retrieval failures are errors.
func (u *AnswerUseCase) Answer(question string, k int, directives string) (domain.Answer, error) {
	if k <= 0 {
		k = u.topK
	}
	if directives == "" {
		directives = DefaultDirectives
	}

	results, err := u.store.Search(question, k)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("retrieval failed: %w", err)
	}

	if len(results) == 0 {
		return domain.Answer{Text: NoDocumentsMessage}, nil
	}

	texts := make([]string, len(results))
	sources := make([]domain.Source, len(results))
	for i, r := range results {
		texts[i] = r.Chunk.Text
		sources[i] = domain.Source{
			Filename: r.Chunk.Source,
			Page:     r.Chunk.Page,
			Score:    r.Score,
		}
	}
	context := strings.Join(texts, "\n\n")

	prompt := BuildPrompt(context, question, directives)

	text, err := u.llm.Complete(prompt)
	if err != nil {
		return domain.Answer{
			Text:    llmFailureMessage,
			Sources: sources,
			Error:   err.Error(),
		}, nil
	}

	return domain.Answer{Text: text, Sources: sources}, nil
}

// BuildPrompt assembles the grounded prompt: context block, literal
// question, and formatting directives.
func BuildPrompt(context, question, directives string) string {
	return fmt.Sprintf(`Answer the following question based on this context:

Context:
%s

Question: %s

%s

Answer:`, context, question, directives)
}

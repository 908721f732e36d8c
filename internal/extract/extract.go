// Package extract converts free-form model output into structured data.
// The model is prompted to wrap its JSON in a fenced ```json block; this
// package locates the first such block and decodes it. Extraction is a
// best-effort step: callers treat a failure as an empty value, report it
// through the events channel, and continue.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/menupick/menupick/internal/domain"
)

// Common extraction errors.
var (
	// ErrNoBlock is returned when the text contains no fenced JSON block.
	ErrNoBlock = errors.New("no fenced JSON block in response")

	// ErrMalformed is returned when the fenced block is not valid JSON of
	// the expected shape.
	ErrMalformed = errors.New("malformed JSON block")
)

const (
	openFence  = "```json"
	closeFence = "```"
)

// Block returns the contents of the first ```json fence in raw, trimmed of
// surrounding whitespace. Returns ErrNoBlock if no complete fence exists.
func Block(raw string) (string, error) {
	_, rest, found := strings.Cut(raw, openFence)
	if !found {
		return "", ErrNoBlock
	}

	body, _, found := strings.Cut(rest, closeFence)
	if !found {
		return "", ErrNoBlock
	}

	return strings.TrimSpace(body), nil
}

// Questions extracts a question set from raw model output.
// The zero-value QuestionSet is returned alongside any error so callers can
// persist it unconditionally.
func Questions(raw string) (domain.QuestionSet, error) {
	questions := domain.QuestionSet{}
	if err := decodeBlock(raw, &questions); err != nil {
		return domain.QuestionSet{}, err
	}
	return questions, nil
}

// Recommendations extracts a recommendation set from raw model output.
func Recommendations(raw string) (domain.RecommendationSet, error) {
	var result domain.RecommendationSet
	if err := decodeBlock(raw, &result); err != nil {
		return domain.RecommendationSet{}, err
	}
	return result, nil
}

func decodeBlock(raw string, v any) error {
	block, err := Block(raw)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(block), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

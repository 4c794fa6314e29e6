// Package provider runs the NLP models that annotate briefs.
package provider

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/helixml/newsbrief/domain/service"
	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

// ErrModelUnavailable indicates a model directory is missing or unusable.
var ErrModelUnavailable = errors.New("model unavailable")

// outsideLabel is the token-classification label for "not an entity".
const outsideLabel = "O"

// sessionSingleton holds the process-wide hugot session and both pipelines.
// ONNX Runtime allows one active session per process, so every HugotAnalyzer
// shares it. The mutex serializes initialization and inference.
var sessionSingleton struct {
	session   *hugot.Session
	ner       *pipelines.TokenClassificationPipeline
	sentiment *pipelines.TextClassificationPipeline
	mu        sync.Mutex
	ready     bool
}

// HugotAnalyzer extracts entities with a token-classification model and
// classifies sentiment with a text-classification model. Both are ONNX
// exports loaded from local directories containing tokenizer.json.
type HugotAnalyzer struct {
	nerPath       string
	sentimentPath string
}

// NewHugotAnalyzer creates a HugotAnalyzer. Models are loaded on first use.
func NewHugotAnalyzer(nerPath, sentimentPath string) *HugotAnalyzer {
	return &HugotAnalyzer{
		nerPath:       nerPath,
		sentimentPath: sentimentPath,
	}
}

// Available reports whether both model directories look usable.
func (h *HugotAnalyzer) Available() bool {
	return checkModelDir(h.nerPath) == nil && checkModelDir(h.sentimentPath) == nil
}

// Warmup loads both models so the first annotation does not pay for it.
func (h *HugotAnalyzer) Warmup(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sessionSingleton.mu.Lock()
	defer sessionSingleton.mu.Unlock()
	return h.initializeLocked()
}

func (h *HugotAnalyzer) initializeLocked() error {
	if sessionSingleton.ready {
		return nil
	}

	if err := checkModelDir(h.nerPath); err != nil {
		return err
	}
	if err := checkModelDir(h.sentimentPath); err != nil {
		return err
	}

	session, err := newHugotSession()
	if err != nil {
		return fmt.Errorf("create hugot session: %w", err)
	}

	ner, err := hugot.NewPipeline(session, hugot.TokenClassificationConfig{
		ModelPath: h.nerPath,
		Name:      "brief-ner",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
			pipelines.WithIgnoreLabels([]string{outsideLabel}),
		},
	})
	if err != nil {
		_ = session.Destroy()
		return fmt.Errorf("create token classification pipeline: %w", err)
	}

	sentiment, err := hugot.NewPipeline(session, hugot.TextClassificationConfig{
		ModelPath: h.sentimentPath,
		Name:      "brief-sentiment",
		Options: []hugot.TextClassificationOption{
			pipelines.WithSoftmax(),
			pipelines.WithSingleLabel(),
		},
	})
	if err != nil {
		_ = session.Destroy()
		return fmt.Errorf("create text classification pipeline: %w", err)
	}

	sessionSingleton.session = session
	sessionSingleton.ner = ner
	sessionSingleton.sentiment = sentiment
	sessionSingleton.ready = true
	return nil
}

// ExtractEntities returns the entities found in text, in order of appearance.
func (h *HugotAnalyzer) ExtractEntities(ctx context.Context, text string) ([]service.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sessionSingleton.mu.Lock()
	defer sessionSingleton.mu.Unlock()

	if err := h.initializeLocked(); err != nil {
		return nil, fmt.Errorf("initialize hugot: %w", err)
	}

	result, err := sessionSingleton.ner.RunPipeline([]string{text})
	if err != nil {
		return nil, fmt.Errorf("run token classification: %w", err)
	}
	if len(result.Entities) == 0 {
		return []service.Entity{}, nil
	}

	entities := make([]service.Entity, 0, len(result.Entities[0]))
	for _, e := range result.Entities[0] {
		word := strings.TrimSpace(e.Word)
		if word == "" || e.Entity == outsideLabel {
			continue
		}
		entities = append(entities, service.NewEntity(word, e.Entity, float64(e.Score)))
	}
	return entities, nil
}

// ClassifySentiment returns the top sentiment label for text.
func (h *HugotAnalyzer) ClassifySentiment(ctx context.Context, text string) (service.Classification, error) {
	if err := ctx.Err(); err != nil {
		return service.Classification{}, err
	}

	sessionSingleton.mu.Lock()
	defer sessionSingleton.mu.Unlock()

	if err := h.initializeLocked(); err != nil {
		return service.Classification{}, fmt.Errorf("initialize hugot: %w", err)
	}

	result, err := sessionSingleton.sentiment.RunPipeline([]string{text})
	if err != nil {
		return service.Classification{}, fmt.Errorf("run text classification: %w", err)
	}
	if len(result.ClassificationOutputs) == 0 || len(result.ClassificationOutputs[0]) == 0 {
		return service.Classification{}, errors.New("text classification returned no label")
	}

	top := result.ClassificationOutputs[0][0]
	for _, candidate := range result.ClassificationOutputs[0][1:] {
		if candidate.Score > top.Score {
			top = candidate
		}
	}
	return service.NewClassification(top.Label, float64(top.Score)), nil
}

// Close is a no-op. The session is process-global and released at exit.
func (h *HugotAnalyzer) Close() error {
	return nil
}

// checkModelDir verifies dir holds a tokenizer and an ONNX file.
func checkModelDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("%w: no model path configured", ErrModelUnavailable)
	}
	if _, err := os.Stat(filepath.Join(dir, "tokenizer.json")); err != nil {
		return fmt.Errorf("%w: %s has no tokenizer.json", ErrModelUnavailable, dir)
	}
	if !hasONNXFile(dir) {
		return fmt.Errorf("%w: %s has no .onnx file", ErrModelUnavailable, dir)
	}
	return nil
}

func hasONNXFile(dir string) bool {
	for _, d := range []string{dir, filepath.Join(dir, "onnx")} {
		entries, err := os.ReadDir(d)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".onnx") {
				return true
			}
		}
	}
	return false
}

var _ service.Analyzer = (*HugotAnalyzer)(nil)

// Package ocr turns a whiteboard photo into text by trying an ordered list of
// extraction strategies until one produces non-blank output.
package ocr

import (
	"context"
	"image"
	"strings"

	"github.com/rs/zerolog"
)

// Strategy extracts text from an image. Each strategy applies its own
// preprocessing to the original image.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, img image.Image) (string, error)
}

// Result is the pipeline outcome. Strategy is empty when nothing produced
// usable text.
type Result struct {
	Text     string
	Strategy string
}

// Empty reports whether the result carries no visible text.
func (r Result) Empty() bool {
	return strings.TrimSpace(r.Text) == ""
}

type Pipeline struct {
	strategies []Strategy
	log        zerolog.Logger
}

func NewPipeline(log zerolog.Logger, strategies ...Strategy) *Pipeline {
	return &Pipeline{
		strategies: strategies,
		log:        log,
	}
}

// Strategies returns the strategy names in evaluation order.
func (p *Pipeline) Strategies() []string {
	names := make([]string, 0, len(p.strategies))
	for _, s := range p.strategies {
		names = append(names, s.Name())
	}
	return names
}

// Extract runs the strategies in order and never fails. The first output that
// is non-blank after trimming is returned unchanged. Otherwise the raw output
// of the last strategy that ran without error is returned.
func (p *Pipeline) Extract(ctx context.Context, img image.Image) Result {
	var last string
	for _, s := range p.strategies {
		text, err := s.Extract(ctx, img)
		if err != nil {
			p.log.Warn().Err(err).Str("strategy", s.Name()).Msg("text extraction failed")
			last = ""
			continue
		}
		if strings.TrimSpace(text) != "" {
			return Result{Text: text, Strategy: s.Name()}
		}
		p.log.Debug().Str("strategy", s.Name()).Msg("text extraction returned no text")
		last = text
	}
	return Result{Text: last}
}

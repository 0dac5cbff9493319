package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"ink2deck/internal/deck"
	"ink2deck/internal/model"
	"ink2deck/internal/ocr"
	"ink2deck/internal/vision"
)

var (
	ErrNoTextDetected   = errors.New("no text detected")
	ErrUnsupportedImage = errors.New("unsupported image")
)

type TextExtractor interface {
	Extract(ctx context.Context, img image.Image) ocr.Result
}

type DocumentBuilder interface {
	Build(text string) ([]byte, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event model.ConversionEvent) error
}

type ConvertService struct {
	extractor TextExtractor
	documents DocumentBuilder
	events    EventPublisher
	log       zerolog.Logger
	now       func() time.Time
}

// NewConvertService wires the pipeline and builders. events may be nil, in
// which case no conversion events are emitted.
func NewConvertService(extractor TextExtractor, documents DocumentBuilder, events EventPublisher, log zerolog.Logger) *ConvertService {
	return &ConvertService{
		extractor: extractor,
		documents: documents,
		events:    events,
		log:       log,
		now:       time.Now,
	}
}

// Extract decodes the upload and runs the text pipeline without building any
// artifacts.
func (s *ConvertService) Extract(ctx context.Context, r io.Reader) (image.Image, ocr.Result, error) {
	img, _, err := vision.Decode(r)
	if err != nil {
		return nil, ocr.Result{}, fmt.Errorf("%w: %w", ErrUnsupportedImage, err)
	}

	res := s.extractor.Extract(ctx, img)
	if res.Empty() {
		return img, res, ErrNoTextDetected
	}
	return img, res, nil
}

// Convert turns an uploaded photo into a slide deck and a PDF of its text.
// Builders only run when the pipeline found visible text.
func (s *ConvertService) Convert(ctx context.Context, username string, r io.Reader) (*model.Artifacts, error) {
	img, res, err := s.Extract(ctx, r)
	if err != nil {
		return nil, err
	}

	preview, err := vision.EncodePNG(img)
	if err != nil {
		return nil, fmt.Errorf("encode preview failed: %w", err)
	}
	deckData, err := deck.Build(res.Text, img)
	if err != nil {
		return nil, fmt.Errorf("build slide deck failed: %w", err)
	}
	docData, err := s.documents.Build(res.Text)
	if err != nil {
		return nil, fmt.Errorf("build document failed: %w", err)
	}

	artifacts := &model.Artifacts{
		Text:      res.Text,
		Strategy:  res.Strategy,
		Image:     preview,
		Deck:      deckData,
		Document:  docData,
		CreatedAt: s.now().UTC(),
	}
	s.publish(ctx, username, artifacts)
	return artifacts, nil
}

func (s *ConvertService) publish(ctx context.Context, username string, a *model.Artifacts) {
	if s.events == nil {
		return
	}
	event := model.ConversionEvent{
		Username:   username,
		Strategy:   a.Strategy,
		TextLength: utf8.RuneCountInString(a.Text),
		SlideCount: 2 + len(deck.Paragraphs(a.Text)),
		CreatedAt:  a.CreatedAt,
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("publish conversion event failed")
	}
}

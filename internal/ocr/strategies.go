package ocr

import (
	"context"
	"fmt"
	"image"

	"ink2deck/internal/ai"
	"ink2deck/internal/vision"
)

const (
	StrategyVision    = "vision"
	StrategyTesseract = "tesseract"
)

// TranscribeInstruction is sent alongside the image to the vision service.
const TranscribeInstruction = "Extract all text from this whiteboard/image exactly as written, including equations. " +
	"Preserve line breaks and original language."

// Transcriber is the remote vision-language call.
type Transcriber interface {
	Transcribe(ctx context.Context, cfg ai.ChatConfig, instruction string, pngData []byte) (string, error)
}

// Engine is a local OCR engine fed with PNG bytes.
type Engine interface {
	Recognize(ctx context.Context, pngData []byte) (string, error)
}

// VisionStrategy sends the fixed-threshold image to a vision-language model.
type VisionStrategy struct {
	client Transcriber
	cfg    ai.ChatConfig
}

func NewVisionStrategy(client Transcriber, cfg ai.ChatConfig) *VisionStrategy {
	return &VisionStrategy{client: client, cfg: cfg}
}

func (s *VisionStrategy) Name() string { return StrategyVision }

func (s *VisionStrategy) Extract(ctx context.Context, img image.Image) (string, error) {
	data, err := vision.EncodePNG(vision.Binarize(vision.FitWithin(img, vision.MaxVisionSide), vision.FixedThreshold(vision.FixedCutoff)))
	if err != nil {
		return "", err
	}
	text, err := s.client.Transcribe(ctx, s.cfg, TranscribeInstruction, data)
	if err != nil {
		return "", fmt.Errorf("vision transcribe failed: %w", err)
	}
	return text, nil
}

// LocalStrategy runs the local OCR engine on the Otsu-thresholded image.
type LocalStrategy struct {
	engine Engine
}

func NewLocalStrategy(engine Engine) *LocalStrategy {
	return &LocalStrategy{engine: engine}
}

func (s *LocalStrategy) Name() string { return StrategyTesseract }

func (s *LocalStrategy) Extract(ctx context.Context, img image.Image) (string, error) {
	data, err := vision.EncodePNG(vision.Binarize(img, vision.OtsuThreshold()))
	if err != nil {
		return "", err
	}
	text, err := s.engine.Recognize(ctx, data)
	if err != nil {
		return "", fmt.Errorf("local ocr failed: %w", err)
	}
	return text, nil
}

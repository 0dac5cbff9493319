// Package tesseract is the local OCR engine behind ocr.LocalStrategy. It
// links libtesseract through cgo, so only the process wiring imports it.
package tesseract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// PageSegMode treats the image as a single uniform block of text.
const PageSegMode = gosseract.PSM_SINGLE_BLOCK

// Engine recognizes text with a fresh gosseract client per call.
type Engine struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

func New(languages ...string) *Engine {
	return &Engine{
		languages:     languages,
		clientFactory: gosseract.NewClient,
	}
}

func (e *Engine) Name() string { return "tesseract" }

func (e *Engine) Recognize(ctx context.Context, pngData []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := e.clientFactory()
	defer c.Close()

	if err := e.configure(c, pngData); err != nil {
		return "", err
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}

func (e *Engine) configure(c *gosseract.Client, pngData []byte) error {
	if len(e.languages) > 0 {
		if err := c.SetLanguage(e.languages...); err != nil {
			return fmt.Errorf("set languages: %w", err)
		}
	}
	if err := c.SetPageSegMode(PageSegMode); err != nil {
		return fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := c.SetImageFromBytes(pngData); err != nil {
		return fmt.Errorf("set image: %w", err)
	}
	return nil
}

// Package document renders extracted text into a simple A4 PDF.
package document

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/text/encoding/charmap"
)

const (
	Title = "Extracted Content"

	fontSize   = 12
	lineHeight = 10

	coreFamily = "Helvetica"
)

type fontSource struct {
	family string
	load   func() ([]byte, error)
}

type Builder struct {
	fonts []fontSource
	log   zerolog.Logger
}

// NewBuilder tries the TTF at fontPath first, then the bundled Go Regular
// face. Core Helvetica is always the last resort.
func NewBuilder(fontPath string, log zerolog.Logger) *Builder {
	var fonts []fontSource
	if fontPath != "" {
		fonts = append(fonts, fontSource{
			family: "Body",
			load:   func() ([]byte, error) { return os.ReadFile(fontPath) },
		})
	}
	fonts = append(fonts, fontSource{
		family: "GoRegular",
		load:   func() ([]byte, error) { return goregular.TTF, nil },
	})
	return &Builder{fonts: fonts, log: log}
}

// Build writes text as word-wrapped 12pt paragraphs. It does not fail on
// characters the chosen font cannot show: when every Unicode font fails the
// text is re-encoded to Windows-1252 with '?' for anything unrepresentable.
func (b *Builder) Build(text string) ([]byte, error) {
	for _, f := range b.fonts {
		data, err := render(text, f)
		if err == nil {
			return data, nil
		}
		b.log.Warn().Err(err).Str("font", f.family).Msg("pdf render failed, trying next font")
	}

	data, err := render(toWindows1252(text), fontSource{family: coreFamily})
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return data, nil
}

func render(text string, f fontSource) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("pdf writer panic: %v", r)
		}
	}()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(Title, true)
	pdf.SetAutoPageBreak(true, 15)

	if f.load != nil {
		ttf, err := f.load()
		if err != nil {
			return nil, fmt.Errorf("load font %s: %w", f.family, err)
		}
		pdf.AddUTF8FontFromBytes(f.family, "", ttf)
	}
	pdf.AddPage()
	pdf.SetFont(f.family, "", fontSize)
	pdf.MultiCell(0, lineHeight, text, "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toWindows1252(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			out = append(out, c)
			continue
		}
		out = append(out, '?')
	}
	return string(out)
}

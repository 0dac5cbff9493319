package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ink2deck/internal/ai"
	"ink2deck/internal/vision"
)

type fakeTranscriber struct {
	text  string
	err   error
	calls int
	got   []byte
	instr string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ ai.ChatConfig, instruction string, pngData []byte) (string, error) {
	f.calls++
	f.got = pngData
	f.instr = instruction
	return f.text, f.err
}

type fakeEngine struct {
	text  string
	err   error
	calls int
	got   []byte
}

func (f *fakeEngine) Recognize(_ context.Context, pngData []byte) (string, error) {
	f.calls++
	f.got = pngData
	return f.text, f.err
}

func whiteboard() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 30, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 30; x++ {
			v := uint8(90 + (x*5+y*3)%140)
			img.Set(x, y, color.RGBA{R: v, G: v, B: uint8(x * 8), A: 255})
		}
	}
	return img
}

func decodeGray(t *testing.T, data []byte) []uint8 {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return vision.Grayscale(img).Pix
}

func newPipeline(strategies ...Strategy) *Pipeline {
	return NewPipeline(zerolog.Nop(), strategies...)
}

func TestPipeline_VisionWins(t *testing.T) {
	tr := &fakeTranscriber{text: "  Hello\n\nWorld  "}
	eng := &fakeEngine{text: "tesseract text"}
	img := whiteboard()

	p := newPipeline(NewVisionStrategy(tr, ai.ChatConfig{}), NewLocalStrategy(eng))
	res := p.Extract(context.Background(), img)

	assert.Equal(t, "  Hello\n\nWorld  ", res.Text)
	assert.Equal(t, StrategyVision, res.Strategy)
	assert.Equal(t, 0, eng.calls)
	assert.Equal(t, TranscribeInstruction, tr.instr)

	want := vision.Binarize(img, vision.FixedThreshold(vision.FixedCutoff)).Pix
	assert.Equal(t, want, decodeGray(t, tr.got))
}

func TestPipeline_FallsBackToLocal(t *testing.T) {
	cases := map[string]*fakeTranscriber{
		"empty":      {text: ""},
		"whitespace": {text: " \n\t "},
		"failure":    {err: errors.New("503 unavailable")},
	}

	for name, tr := range cases {
		t.Run(name, func(t *testing.T) {
			eng := &fakeEngine{text: "local text\n"}
			img := whiteboard()

			p := newPipeline(NewVisionStrategy(tr, ai.ChatConfig{}), NewLocalStrategy(eng))
			res := p.Extract(context.Background(), img)

			assert.Equal(t, 1, tr.calls)
			assert.Equal(t, 1, eng.calls)
			assert.Equal(t, "local text\n", res.Text)
			assert.Equal(t, StrategyTesseract, res.Strategy)

			want := vision.Binarize(img, vision.OtsuThreshold()).Pix
			assert.Equal(t, want, decodeGray(t, eng.got))
		})
	}
}

func TestPipeline_VisionUnconfigured(t *testing.T) {
	eng := &fakeEngine{text: "only local"}
	p := newPipeline(NewLocalStrategy(eng))

	res := p.Extract(context.Background(), whiteboard())
	assert.Equal(t, "only local", res.Text)
	assert.Equal(t, []string{StrategyTesseract}, p.Strategies())
}

func TestPipeline_AllFail(t *testing.T) {
	tr := &fakeTranscriber{err: errors.New("boom")}
	eng := &fakeEngine{err: errors.New("tesseract missing")}

	p := newPipeline(NewVisionStrategy(tr, ai.ChatConfig{}), NewLocalStrategy(eng))
	res := p.Extract(context.Background(), whiteboard())

	assert.Equal(t, "", res.Text)
	assert.Equal(t, "", res.Strategy)
	assert.True(t, res.Empty())
}

func TestPipeline_LocalBlankIsReturnedRaw(t *testing.T) {
	eng := &fakeEngine{text: "\n\f"}
	p := newPipeline(NewVisionStrategy(&fakeTranscriber{}, ai.ChatConfig{}), NewLocalStrategy(eng))

	res := p.Extract(context.Background(), whiteboard())
	assert.Equal(t, "\n\f", res.Text)
	assert.True(t, res.Empty())
}

func TestPipeline_NoStrategies(t *testing.T) {
	res := newPipeline().Extract(context.Background(), whiteboard())
	assert.True(t, res.Empty())
}

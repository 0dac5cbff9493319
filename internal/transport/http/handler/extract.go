package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ink2deck/internal/app"
	"ink2deck/internal/deck"
	"ink2deck/internal/transport/http/response"
)

type ExtractHandler struct {
	converter *app.ConvertService
}

func NewExtractHandler(converter *app.ConvertService) *ExtractHandler {
	return &ExtractHandler{converter: converter}
}

// Extract runs the text pipeline on a multipart "image" upload and returns
// the raw text, the strategy that produced it and the slide paragraphs.
func (h *ExtractHandler) Extract(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing image file (form field 'image')")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to open uploaded file")
		return
	}
	defer f.Close()

	_, result, err := h.converter.Extract(c.Request.Context(), f)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrUnsupportedImage):
			response.Error(c, http.StatusBadRequest, response.CodeUnsupportedImage, "image must be PNG or JPEG")
		case errors.Is(err, app.ErrNoTextDetected):
			response.Error(c, http.StatusUnprocessableEntity, response.CodeNoTextDetected, "no text detected")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "extraction failed")
		}
		return
	}

	response.OK(c, gin.H{
		"text":       result.Text,
		"strategy":   result.Strategy,
		"paragraphs": deck.Paragraphs(result.Text),
	})
}

package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"ink2deck/internal/app"
	"ink2deck/internal/cache"
	"ink2deck/internal/model"
	"ink2deck/internal/navigation"
	"ink2deck/internal/transport/http/middleware"
)

const (
	DeckFilename     = "whiteboard_presentation.pptx"
	DeckMIME         = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	DocumentFilename = "extracted_content.pdf"
	DocumentMIME     = "application/pdf"
	PreviewMIME      = "image/png"
)

// User-facing messages shown on the HTML screens.
const (
	msgInvalidLogin   = "Invalid username or password"
	msgAcceptTerms    = "Please accept the Terms and Conditions"
	msgFillAllFields  = "Please fill all fields"
	msgAccountExists  = "Username or email already exists"
	msgAccountCreated = "Account created! Please login."
	msgChooseImage    = "Please choose an image (JPG, PNG)"
	msgUnsupportedExt = "Unsupported file type. Please upload a JPG or PNG image."
	msgUnreadable     = "The file could not be read as an image."
	msgNoText         = "No text detected. Please try a clearer image."
	msgProcessing     = "An error occurred while processing the image. Please try again."
	msgExtracted      = "Text extracted successfully!"
)

var allowedExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

type WebHandler struct {
	auth      *app.AuthService
	converter *app.ConvertService
	sessions  *cache.SessionStore
	artifacts *cache.ArtifactStore
	log       zerolog.Logger
}

type pageData struct {
	Session    *navigation.Session
	Tab        string
	Error      string
	Success    string
	StoreError string
	Artifacts  *model.Artifacts
}

func NewWebHandler(auth *app.AuthService, converter *app.ConvertService, sessions *cache.SessionStore, artifacts *cache.ArtifactStore, log zerolog.Logger) *WebHandler {
	return &WebHandler{
		auth:      auth,
		converter: converter,
		sessions:  sessions,
		artifacts: artifacts,
		log:       log,
	}
}

func (h *WebHandler) Index(c *gin.Context) {
	h.render(c, http.StatusOK, pageData{})
}

func (h *WebHandler) Start(c *gin.Context) {
	h.transition(c, (*navigation.Session).GetStarted)
}

func (h *WebHandler) Back(c *gin.Context) {
	h.transition(c, (*navigation.Session).Back)
}

func (h *WebHandler) Logout(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if sess.Screen == navigation.ScreenWorkspace {
		if err := h.artifacts.Delete(c.Request.Context(), sess.ID); err != nil {
			h.log.Warn().Err(err).Msg("clear artifacts on logout failed")
		}
	}
	h.transition(c, (*navigation.Session).Logout)
}

func (h *WebHandler) Login(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if sess.Resolve() != navigation.ScreenAuth {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	result, err := h.auth.Login(c.Request.Context(), app.LoginInput{
		Username: c.PostForm("username"),
		Password: c.PostForm("password"),
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidCredential):
			h.render(c, http.StatusUnauthorized, pageData{Tab: "login", Error: msgInvalidLogin})
		case errors.Is(err, app.ErrStoreUnavailable):
			h.log.Error().Err(err).Msg("login failed")
			h.render(c, http.StatusServiceUnavailable, pageData{Tab: "login"})
		default:
			h.log.Error().Err(err).Msg("login failed")
			h.render(c, http.StatusInternalServerError, pageData{Tab: "login", Error: "Login failed. Please try again."})
		}
		return
	}

	if err := sess.LoginSucceeded(result.User.Username); err != nil {
		h.log.Debug().Err(err).Msg("ignored navigation request")
	}
	h.save(c, sess)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *WebHandler) Signup(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if sess.Resolve() != navigation.ScreenAuth {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	_, err := h.auth.Register(c.Request.Context(), app.RegisterInput{
		Name:        c.PostForm("name"),
		Email:       c.PostForm("email"),
		Username:    c.PostForm("username"),
		Password:    c.PostForm("password"),
		AcceptTerms: c.PostForm("terms") != "",
	})
	if err != nil {
		data := pageData{Tab: "signup"}
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, app.ErrTermsNotAccepted):
			data.Error = msgAcceptTerms
		case errors.Is(err, app.ErrInvalidInput):
			data.Error = msgFillAllFields
		case errors.Is(err, app.ErrUsernameExists), errors.Is(err, app.ErrEmailExists):
			status = http.StatusConflict
			data.Error = msgAccountExists
		case errors.Is(err, app.ErrStoreUnavailable):
			h.log.Error().Err(err).Msg("signup failed")
			status = http.StatusServiceUnavailable
		default:
			h.log.Error().Err(err).Msg("signup failed")
			status = http.StatusInternalServerError
			data.Error = "Account creation failed. Please try again."
		}
		h.render(c, status, data)
		return
	}

	h.render(c, http.StatusOK, pageData{Tab: "login", Success: msgAccountCreated})
}

// Upload converts the photo and keeps the outputs for the download routes.
// Any failure clears previously stored outputs.
func (h *WebHandler) Upload(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if sess.Resolve() != navigation.ScreenWorkspace {
		h.save(c, sess)
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	ctx := c.Request.Context()

	fail := func(status int, msg string) {
		if err := h.artifacts.Delete(ctx, sess.ID); err != nil {
			h.log.Warn().Err(err).Msg("clear artifacts failed")
		}
		h.render(c, status, pageData{Error: msg})
	}

	file, err := c.FormFile("image")
	if err != nil {
		fail(http.StatusBadRequest, msgChooseImage)
		return
	}
	if !allowedExtensions[strings.ToLower(filepath.Ext(file.Filename))] {
		fail(http.StatusBadRequest, msgUnsupportedExt)
		return
	}
	f, err := file.Open()
	if err != nil {
		fail(http.StatusBadRequest, msgUnreadable)
		return
	}
	defer f.Close()

	artifacts, err := h.converter.Convert(ctx, sess.Username, f)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNoTextDetected):
			fail(http.StatusUnprocessableEntity, msgNoText)
		case errors.Is(err, app.ErrUnsupportedImage):
			fail(http.StatusBadRequest, msgUnreadable)
		default:
			h.log.Error().Err(err).Str("username", sess.Username).Msg("conversion failed")
			fail(http.StatusInternalServerError, msgProcessing)
		}
		return
	}

	if err := h.artifacts.Put(ctx, sess.ID, artifacts); err != nil {
		h.log.Error().Err(err).Msg("store artifacts failed")
		fail(http.StatusInternalServerError, msgProcessing)
		return
	}
	h.render(c, http.StatusOK, pageData{Success: msgExtracted, Artifacts: artifacts})
}

func (h *WebHandler) DownloadDeck(c *gin.Context) {
	h.download(c, DeckFilename, DeckMIME, func(a *model.Artifacts) []byte { return a.Deck })
}

func (h *WebHandler) DownloadDocument(c *gin.Context) {
	h.download(c, DocumentFilename, DocumentMIME, func(a *model.Artifacts) []byte { return a.Document })
}

// Preview serves the uploaded photo inline for the workspace.
func (h *WebHandler) Preview(c *gin.Context) {
	h.download(c, "", PreviewMIME, func(a *model.Artifacts) []byte { return a.Image })
}

// download serves one artifact. An empty filename serves it inline.
func (h *WebHandler) download(c *gin.Context, filename, mime string, pick func(*model.Artifacts) []byte) {
	sess := middleware.CurrentSession(c)
	if !sess.LoggedIn {
		c.String(http.StatusUnauthorized, "Please login first")
		return
	}

	a, ok, err := h.artifacts.Get(c.Request.Context(), sess.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("load artifacts failed")
		c.String(http.StatusInternalServerError, "Download failed")
		return
	}
	if !ok {
		c.String(http.StatusNotFound, "Nothing to download yet. Upload a whiteboard image first.")
		return
	}

	data := pick(a)
	if len(data) == 0 {
		c.String(http.StatusNotFound, "Nothing to download yet. Upload a whiteboard image first.")
		return
	}
	if filename != "" {
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, mime, data)
}

func (h *WebHandler) transition(c *gin.Context, op func(*navigation.Session) error) {
	sess := middleware.CurrentSession(c)
	if err := op(sess); err != nil {
		h.log.Debug().Err(err).Msg("ignored navigation request")
	}
	h.save(c, sess)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *WebHandler) save(c *gin.Context, sess *navigation.Session) {
	if err := h.sessions.Save(c.Request.Context(), sess); err != nil {
		h.log.Error().Err(err).Msg("save session failed")
	}
}

// render resolves the screen for the session and writes it.
func (h *WebHandler) render(c *gin.Context, status int, data pageData) {
	sess := middleware.CurrentSession(c)
	data.Session = sess
	screen := sess.Resolve()
	h.save(c, sess)

	switch screen {
	case navigation.ScreenAuth:
		if err := h.auth.StoreError(); err != nil {
			data.StoreError = "Database connection failed: " + err.Error()
		}
		if data.Tab == "" {
			data.Tab = "login"
		}
		c.HTML(status, "auth.html", data)
	case navigation.ScreenWorkspace:
		if data.Artifacts == nil && data.Error == "" {
			a, ok, err := h.artifacts.Get(c.Request.Context(), sess.ID)
			if err != nil {
				h.log.Warn().Err(err).Msg("load artifacts failed")
			}
			if ok {
				data.Artifacts = a
			}
		}
		c.HTML(status, "workspace.html", data)
	default:
		c.HTML(status, "landing.html", data)
	}
}

package web

import (
	"OCRVisionPro/internal/ai"
	"OCRVisionPro/internal/mode"
	"OCRVisionPro/internal/prompt"
	"OCRVisionPro/internal/service/image"
	"OCRVisionPro/internal/service/render"
	"OCRVisionPro/internal/service/state"
	"OCRVisionPro/internal/service/vision"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	sessionCookie = "ocrvp_session"
	workspaceKey  = "workspace"
)

type credentialRequest struct {
	APIKey string `json:"api_key"`
}

type inputRequest struct {
	ContentType string `json:"content_type"`
	Question    string `json:"question"`
}

type chatRequest struct {
	Text string `json:"text"`
}

type option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type stateResponse struct {
	HasCredential bool          `json:"has_credential"`
	ContentTypes  []option      `json:"content_types"`
	Modes         []render.View `json:"modes"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) registerAPI(group *gin.RouterGroup) {
	group.GET("/state", s.handleState)
	group.PUT("/credential", s.handleCredential)
	group.POST("/reset", s.handleReset)
	group.POST("/modes/:mode/image", s.handleUpload)
	group.GET("/modes/:mode/image", s.handleImage)
	group.PUT("/modes/:mode/input", s.handleInput)
	group.POST("/modes/:mode/submit", s.handleSubmit)
	group.POST("/chat/messages", s.handleChat)
}

// session привязывает запрос к рабочему пространству браузера по cookie.
func (s *Server) session() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(sessionCookie)
		ws, actual := s.sessions.Get(id)
		if actual != id {
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     sessionCookie,
				Value:    actual,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		c.Set(workspaceKey, ws)
		c.Next()
	}
}

func workspace(c *gin.Context) *state.Workspace {
	return c.MustGet(workspaceKey).(*state.Workspace)
}

func (s *Server) stateResponse(ws *state.Workspace) stateResponse {
	opts := make([]option, 0, len(mode.ContentTypes))
	for _, ct := range mode.ContentTypes {
		opts = append(opts, option{Value: ct.String(), Label: ct.Label()})
	}
	return stateResponse{
		HasCredential: ws.HasCredential(),
		ContentTypes:  opts,
		Modes:         s.svc.Views(ws),
	}
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.stateResponse(workspace(c)))
}

func (s *Server) handleCredential(c *gin.Context) {
	var req credentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid JSON body", Code: "bad_request"})
		return
	}
	ws := workspace(c)
	ws.SetCredential(req.APIKey)
	c.JSON(http.StatusOK, gin.H{"has_credential": ws.HasCredential()})
}

func (s *Server) handleReset(c *gin.Context) {
	ws := workspace(c)
	s.svc.Reset(ws)
	c.JSON(http.StatusOK, s.stateResponse(ws))
}

func (s *Server) handleUpload(c *gin.Context) {
	m, ok := modeParam(c)
	if !ok {
		return
	}
	limit := s.cfg.MaxUploadBytes
	// запас на заголовки multipart
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+64*1024)

	fh, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: "image is too large", Code: "too_large"})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: "multipart field \"image\" is required", Code: "invalid_input"})
		return
	}
	if fh.Size > limit {
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: "image is too large", Code: "too_large"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "invalid_input"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, limit))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "invalid_input"})
		return
	}

	view, err := s.svc.UploadImage(workspace(c), m, data, fh.Filename)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleImage(c *gin.Context) {
	m, ok := modeParam(c)
	if !ok {
		return
	}
	snap, err := workspace(c).Snapshot(m)
	if err != nil {
		writeError(c, err)
		return
	}
	if snap.Image == nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: image.ErrMissingImage.Error(), Code: "missing_image"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, snap.Image.MimeType(), snap.Image.Bytes())
}

func (s *Server) handleInput(c *gin.Context) {
	m, ok := modeParam(c)
	if !ok {
		return
	}
	var req inputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid JSON body", Code: "bad_request"})
		return
	}
	ct, err := mode.ParseContentType(req.ContentType)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "invalid_content_type"})
		return
	}
	view, err := s.svc.SetInput(workspace(c), m, ct, req.Question)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleSubmit(c *gin.Context) {
	m, ok := modeParam(c)
	if !ok {
		return
	}
	view, err := s.svc.Submit(c.Request.Context(), workspace(c), m)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid JSON body", Code: "bad_request"})
		return
	}
	view, err := s.svc.Chat(c.Request.Context(), workspace(c), req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func modeParam(c *gin.Context) (mode.Mode, bool) {
	m, err := mode.Parse(c.Param("mode"))
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error(), Code: "unknown_mode"})
		return 0, false
	}
	return m, true
}

// writeError переводит локальные ошибки проверки в HTTP-ответ.
// Ошибки вызова модели сюда не попадают: они хранятся в слоте.
func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, state.ErrPending):
		status, code = http.StatusConflict, "pending"
	case errors.Is(err, ai.ErrMissingCredential):
		status, code = http.StatusUnprocessableEntity, "missing_credential"
	case errors.Is(err, image.ErrMissingImage):
		status, code = http.StatusUnprocessableEntity, "missing_image"
	case errors.Is(err, prompt.ErrEmptyQuestion):
		status, code = http.StatusUnprocessableEntity, "empty_question"
	case errors.Is(err, image.ErrInvalidInput):
		status, code = http.StatusUnprocessableEntity, "invalid_input"
	case errors.Is(err, vision.ErrChatSubmit):
		status, code = http.StatusBadRequest, "chat_submit"
	case errors.Is(err, mode.ErrUnknownMode):
		status, code = http.StatusNotFound, "unknown_mode"
	}
	c.JSON(status, errorResponse{Error: err.Error(), Code: code})
}

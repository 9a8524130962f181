package web

import (
	"OCRVisionPro/internal/ai"
	"OCRVisionPro/internal/app/sessions"
	"OCRVisionPro/internal/config"
	"OCRVisionPro/internal/service/render"
	"OCRVisionPro/internal/service/vision"
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type client struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
}

func newClient(t *testing.T, reply string) (*client, *ai.StubClient) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop().Sugar()
	cfg := config.Defaults().Server
	cfg.MaxUploadBytes = 1024

	stub := ai.NewStubClientWithReply(reply)
	srv := NewServer(cfg, vision.NewService(stub, logger), sessions.New("Hello!", logger), logger)
	return &client{t: t, handler: srv.Handler()}, stub
}

func (c *client) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == sessionCookie {
			c.cookie = ck
		}
	}
	return rec
}

func (c *client) json(method, path string, payload any) *httptest.ResponseRecorder {
	c.t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(c.t, err)
		body = bytes.NewReader(raw)
	}
	return c.do(method, path, body, "application/json")
}

func (c *client) upload(mode string, data []byte) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", "picture.png")
	require.NoError(c.t, err)
	_, err = part.Write(data)
	require.NoError(c.t, err)
	require.NoError(c.t, w.Close())
	return c.do(http.MethodPost, "/api/modes/"+mode+"/image", &buf, w.FormDataContentType())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestIndexAndHealth(t *testing.T) {
	c, _ := newClient(t, "")

	rec := c.do(http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "OCR Text Vision Pro")

	rec = c.do(http.MethodGet, "/assets/app.js", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/javascript", rec.Header().Get("Content-Type"))

	rec = c.do(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStateSetsSessionCookie(t *testing.T) {
	c, _ := newClient(t, "")

	rec := c.do(http.MethodGet, "/api/state", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, c.cookie)

	st := decode[stateResponse](t, rec)
	assert.False(t, st.HasCredential)
	require.Len(t, st.Modes, 4)
	assert.Equal(t, "extract", st.Modes[0].Mode)
	assert.Len(t, st.ContentTypes, 4)

	rec = c.json(http.MethodPut, "/api/credential", credentialRequest{APIKey: "sk-test"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "sk-test")

	st = decode[stateResponse](t, c.do(http.MethodGet, "/api/state", nil, ""))
	assert.True(t, st.HasCredential)

	// другой браузер — другая сессия
	other, _ := newClient(t, "")
	other.handler = c.handler
	st = decode[stateResponse](t, other.do(http.MethodGet, "/api/state", nil, ""))
	assert.False(t, st.HasCredential)
}

func TestSubmitWithoutCredential(t *testing.T) {
	c, stub := newClient(t, "text")
	require.Equal(t, http.StatusOK, c.upload("extract", pngBytes).Code)

	rec := c.do(http.MethodPost, "/api/modes/extract/submit", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "missing_credential", decode[errorResponse](t, rec).Code)
	assert.Equal(t, 0, stub.Calls())
}

func TestSubmitWithoutImage(t *testing.T) {
	c, stub := newClient(t, "text")
	c.json(http.MethodPut, "/api/credential", credentialRequest{APIKey: "sk-test"})

	rec := c.do(http.MethodPost, "/api/modes/vqa/submit", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "missing_image", decode[errorResponse](t, rec).Code)
	assert.Equal(t, 0, stub.Calls())
}

func TestExtractFlow(t *testing.T) {
	c, stub := newClient(t, "```python\nprint(1)\n```")
	c.json(http.MethodPut, "/api/credential", credentialRequest{APIKey: "sk-test"})

	rec := c.upload("extract", pngBytes)
	require.Equal(t, http.StatusOK, rec.Code)
	v := decode[render.View](t, rec)
	assert.True(t, v.HasImage)
	assert.Equal(t, "input_ready", v.Status)

	rec = c.do(http.MethodGet, "/api/modes/extract/image", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, pngBytes, rec.Body.Bytes())

	rec = c.json(http.MethodPut, "/api/modes/extract/input", inputRequest{ContentType: "code"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodPost, "/api/modes/extract/submit", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	v = decode[render.View](t, rec)
	assert.Equal(t, "resolved", v.Status)
	assert.Equal(t, []render.Block{{Kind: render.Code, Text: "print(1)", Lang: "python"}}, v.Blocks)
	assert.Equal(t, 1, stub.Calls())
	assert.True(t, stub.LastMessages()[0].HasImage())
}

func TestQuestionRequired(t *testing.T) {
	c, _ := newClient(t, "answer")
	c.json(http.MethodPut, "/api/credential", credentialRequest{APIKey: "sk-test"})
	c.upload("document", pngBytes)

	rec := c.do(http.MethodPost, "/api/modes/document/submit", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "empty_question", decode[errorResponse](t, rec).Code)

	c.json(http.MethodPut, "/api/modes/document/input", inputRequest{Question: "Summarize the invoice"})
	rec = c.do(http.MethodPost, "/api/modes/document/submit", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	v := decode[render.View](t, rec)
	assert.Equal(t, "Answer", v.Heading)
	assert.Equal(t, []render.Block{{Kind: render.Markdown, Text: "answer"}}, v.Blocks)
}

func TestChatFlow(t *testing.T) {
	c, stub := newClient(t, "It is red.")
	c.json(http.MethodPut, "/api/credential", credentialRequest{APIKey: "sk-test"})
	c.upload("chat", pngBytes)

	rec := c.json(http.MethodPost, "/api/chat/messages", chatRequest{Text: "What color is the car?"})
	require.Equal(t, http.StatusOK, rec.Code)
	v := decode[render.View](t, rec)
	require.Len(t, v.Transcript, 3)
	assert.Equal(t, "It is red.", v.Transcript[2].Text)
	assert.Len(t, stub.LastMessages(), 1)

	rec = c.do(http.MethodPost, "/api/modes/chat/submit", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadValidation(t *testing.T) {
	c, _ := newClient(t, "")

	rec := c.upload("extract", []byte("GIF89a not supported"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "invalid_input", decode[errorResponse](t, rec).Code)

	big := append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{0}, 2048)...)
	rec = c.upload("extract", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = c.do(http.MethodPost, "/api/modes/extract/image", strings.NewReader("x"), "text/plain")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = c.do(http.MethodGet, "/api/modes/extract/image", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownModeAndContentType(t *testing.T) {
	c, _ := newClient(t, "")

	rec := c.do(http.MethodPost, "/api/modes/translate/submit", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "unknown_mode", decode[errorResponse](t, rec).Code)

	rec = c.json(http.MethodPut, "/api/modes/extract/input", inputRequest{ContentType: "table"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestReset(t *testing.T) {
	c, _ := newClient(t, "done")
	c.json(http.MethodPut, "/api/credential", credentialRequest{APIKey: "sk-test"})
	c.upload("extract", pngBytes)
	c.upload("chat", pngBytes)
	c.do(http.MethodPost, "/api/modes/extract/submit", nil, "")

	rec := c.do(http.MethodPost, "/api/reset", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[stateResponse](t, rec)
	assert.True(t, st.HasCredential)
	for _, v := range st.Modes {
		assert.Equal(t, "empty", v.Status, v.Mode)
		assert.False(t, v.HasImage)
		assert.Empty(t, v.Blocks)
		assert.Empty(t, v.Transcript)
	}
}

package ai

import (
	"OCRVisionPro/internal/config"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

var _ Client = (*VisionClient)(nil)

// VisionClient отправляет текст и картинки в OpenAI-совместимый chat/completions (OpenRouter).
// Ключ передаётся на каждый вызов, клиент его не хранит.
type VisionClient struct {
	client openai.Client
	model  string
	logger *zap.SugaredLogger
}

func NewVisionClient(cfg *config.Config, logger *zap.SugaredLogger) *VisionClient {
	opts := []option.RequestOption{
		option.WithBaseURL(cfg.OpenRouter.BaseURL),
		// один вызов = один запрос
		option.WithMaxRetries(0),
	}
	if s := strings.TrimSpace(cfg.OpenRouter.SiteURL); s != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", s))
	}
	if s := strings.TrimSpace(cfg.OpenRouter.SiteName); s != "" {
		opts = append(opts, option.WithHeader("X-Title", s))
	}
	if cfg.OpenRouter.RequestTimeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.OpenRouter.RequestTimeout))
	}

	return &VisionClient{
		client: openai.NewClient(opts...),
		model:  cfg.OpenRouter.Model,
		logger: logger,
	}
}

func (c *VisionClient) Complete(ctx context.Context, credential string, messages []Message) (string, error) {
	if strings.TrimSpace(credential) == "" {
		return "", ErrMissingCredential
	}
	if len(messages) == 0 {
		return "", errors.New("no messages to send")
	}

	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: toParams(messages),
	}

	var httpResp *http.Response
	start := time.Now()
	c.logger.Infow("Запрос в OpenRouter...", "model", c.model, "messages", len(messages))
	resp, err := c.client.Chat.Completions.New(ctx, params,
		option.WithAPIKey(credential),
		option.WithResponseInto(&httpResp),
	)
	dur := time.Since(start)
	if err != nil {
		err = classify(err, httpResp)
		c.logger.Errorw("Ошибка ответа OpenRouter", "duration", dur.String(), "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		c.logger.Errorw("Пустой ответ OpenRouter", "duration", dur.String())
		return "", fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	// content отсутствует, null или не строка
	if !resp.Choices[0].Message.JSON.Content.Valid() {
		c.logger.Errorw("Ответ OpenRouter без текста", "duration", dur.String())
		return "", fmt.Errorf("%w: no message content", ErrMalformedResponse)
	}
	c.logger.Infow("Ответ OpenRouter получен", "duration", dur.String())

	return resp.Choices[0].Message.Content, nil
}

func toParams(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch {
		case m.Role == RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Text))
		case m.HasImage():
			out = append(out, openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(m.Text),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: m.ImageURL}),
			}))
		default:
			out = append(out, openai.UserMessage(m.Text))
		}
	}
	return out
}

// classify сводит ошибку SDK к таксономии: TransportError для сети и кодов не 2xx,
// ErrMalformedResponse для всего, что не разобралось как ответ.
func classify(err error, resp *http.Response) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &TransportError{StatusCode: apiErr.StatusCode, Message: apiErr.Message, Err: err}
	}
	// Тело ошибки не в формате {"error": ...}: код всё равно известен из ответа.
	if resp != nil && resp.StatusCode/100 != 2 {
		return &TransportError{StatusCode: resp.StatusCode, Err: err}
	}
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &TransportError{Err: err}
	}
	return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
}

package vision

import (
	"OCRVisionPro/internal/ai"
	"OCRVisionPro/internal/mode"
	"OCRVisionPro/internal/service/image"
	"OCRVisionPro/internal/service/render"
	"OCRVisionPro/internal/service/state"
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ErrChatSubmit — реплики чата отправляются через Chat, а не Submit.
var ErrChatSubmit = errors.New("chat mode takes messages, not submit")

// ModelClient — удалённая модель: по списку сообщений возвращает один ответ ассистента.
type ModelClient interface {
	Complete(ctx context.Context, credential string, messages []ai.Message) (string, error)
}

// Service связывает действия пользователя, слоты рабочего пространства и вызов модели.
type Service struct {
	client ModelClient
	logger *zap.SugaredLogger
}

// NewService создаёт сервис оркестрации.
func NewService(client ModelClient, logger *zap.SugaredLogger) *Service {
	return &Service{client: client, logger: logger}
}

// UploadImage проверяет загруженный файл и кладёт его в слот режима.
func (s *Service) UploadImage(ws *state.Workspace, m mode.Mode, data []byte, name string) (render.View, error) {
	img, err := image.FromUpload(data, name)
	if err != nil {
		s.logger.Warnw("Отклонён загруженный файл", "mode", m.String(), "name", name, "size", len(data), "error", err)
		return render.View{}, err
	}
	if err := ws.SetImage(m, img); err != nil {
		return render.View{}, err
	}
	s.logger.Infow("Изображение загружено", "mode", m.String(), "mime", img.MimeType(), "size", img.Size())
	return s.View(ws, m)
}

// SetInput обновляет параметры запроса режима.
func (s *Service) SetInput(ws *state.Workspace, m mode.Mode, ct mode.ContentType, question string) (render.View, error) {
	if err := ws.SetInput(m, ct, question); err != nil {
		return render.View{}, err
	}
	return s.View(ws, m)
}

// Submit отправляет запрос одноразового режима (распознавание, документ, вопрос по картинке).
func (s *Service) Submit(ctx context.Context, ws *state.Workspace, m mode.Mode) (render.View, error) {
	if m == mode.Chat {
		return render.View{}, ErrChatSubmit
	}
	return s.run(ctx, ws, m, "")
}

// Chat отправляет очередную реплику чата.
func (s *Service) Chat(ctx context.Context, ws *state.Workspace, text string) (render.View, error) {
	return s.run(ctx, ws, mode.Chat, text)
}

// run — один вызов модели. Ошибки проверки возвращаются сразу, без запроса;
// ошибки самого вызова сохраняются в слот и отображаются как результат.
func (s *Service) run(ctx context.Context, ws *state.Workspace, m mode.Mode, text string) (render.View, error) {
	ticket, err := ws.Begin(m, text)
	if err != nil {
		s.logger.Infow("Запрос не отправлен", "mode", m.String(), "reason", err)
		return render.View{}, err
	}

	// Начатый вызов не отменяется, даже если клиент ушёл.
	callCtx := context.WithoutCancel(ctx)
	start := time.Now()
	reply, callErr := s.client.Complete(callCtx, ticket.Credential, ticket.Messages)
	dur := time.Since(start)

	log := s.logger.With("mode", m.String(), "duration", dur.String())
	if ticket.Conversation != "" {
		log = log.With("conversation", ticket.Conversation)
	}
	if !ws.Complete(ticket, reply, callErr) {
		log.Warnw("Результат устарел и отброшен")
	} else if callErr != nil {
		log.Errorw("Ошибка вызова модели", "error", callErr)
	} else {
		log.Infow("Результат получен", "chars", len(reply))
	}
	return s.View(ws, m)
}

// Reset очищает все режимы.
func (s *Service) Reset(ws *state.Workspace) {
	ws.Reset()
	s.logger.Infow("Все режимы очищены")
}

// View отображение одного режима.
func (s *Service) View(ws *state.Workspace, m mode.Mode) (render.View, error) {
	snap, err := ws.Snapshot(m)
	if err != nil {
		return render.View{}, err
	}
	return render.Render(snap), nil
}

// Views отображение всех режимов в порядке вкладок.
func (s *Service) Views(ws *state.Workspace) []render.View {
	snaps := ws.Snapshots()
	out := make([]render.View, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, render.Render(snap))
	}
	return out
}

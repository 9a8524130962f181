package state

import (
	"OCRVisionPro/internal/adapter/localconversation"
	"OCRVisionPro/internal/adapter/message"
	"OCRVisionPro/internal/ai"
	"OCRVisionPro/internal/mode"
	"OCRVisionPro/internal/prompt"
	"OCRVisionPro/internal/service/image"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrPending — по слоту уже идёт запрос; ввод и повторная отправка запрещены до его завершения.
var ErrPending = errors.New("request is already in progress")

// Status — состояние слота режима.
type Status int

const (
	Empty Status = iota
	InputReady
	Pending
	Resolved
	Failed
)

func (s Status) String() string {
	switch s {
	case Empty:
		return "empty"
	case InputReady:
		return "input_ready"
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// slot — ввод и результат одного режима.
type slot struct {
	mode        mode.Mode
	status      Status
	gen         uint64
	image       *image.Ref
	contentType mode.ContentType
	question    string
	result      string
	resultType  mode.ContentType                // тип контента, с которым получен result
	conv        *localconversation.Conversation // только для чата
}

func (s *slot) ready() bool {
	if s.image == nil {
		return false
	}
	if s.mode.NeedsQuestion() && strings.TrimSpace(s.question) == "" {
		return false
	}
	return true
}

// refresh пересчитывает Empty/InputReady после изменения ввода.
// Resolved и Failed сохраняются: последний результат остаётся на экране.
func (s *slot) refresh() {
	if s.status != Empty && s.status != InputReady {
		return
	}
	if s.ready() {
		s.status = InputReady
	} else {
		s.status = Empty
	}
}

func (s *slot) clear() {
	*s = slot{mode: s.mode, gen: s.gen + 1}
}

// Ticket — отправленный запрос. Gen связывает его с поколением слота:
// если слот сбросили, пока запрос шёл, результат отбрасывается.
type Ticket struct {
	Mode        mode.Mode
	Gen         uint64
	ContentType mode.ContentType
	Credential  string
	Messages    []ai.Message

	// Conversation — идентификатор диалога чата, для одноразовых режимов пустой.
	Conversation string
}

// Snapshot — копия слота для отображения.
type Snapshot struct {
	Mode        mode.Mode
	Status      Status
	Image       *image.Ref
	ContentType mode.ContentType
	Question    string
	Result      string // текст ответа или причина ошибки в Failed
	ResultType  mode.ContentType
	Turns       []localconversation.Turn
}

// Workspace — четыре независимых слота и ключ API одной сессии пользователя.
// Блокировка не удерживается во время вызова модели.
type Workspace struct {
	mu         sync.Mutex
	credential string
	greeting   string
	slots      [len(mode.All)]slot
}

// New создаёт пустое рабочее пространство. greeting — первая реплика ассистента в новом чате.
func New(greeting string) *Workspace {
	w := &Workspace{greeting: greeting}
	for _, m := range mode.All {
		w.slots[m].mode = m
	}
	return w
}

func (w *Workspace) slot(m mode.Mode) (*slot, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", mode.ErrUnknownMode, int(m))
	}
	return &w.slots[m], nil
}

// SetCredential сохраняет ключ API. Пустая строка удаляет ключ.
func (w *Workspace) SetCredential(key string) {
	w.mu.Lock()
	w.credential = strings.TrimSpace(key)
	w.mu.Unlock()
}

func (w *Workspace) HasCredential() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.credential != ""
}

// SetImage заменяет картинку режима. В чате новая картинка начинает новый диалог.
func (w *Workspace) SetImage(m mode.Mode, img *image.Ref) error {
	if img == nil {
		return image.ErrMissingImage
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	s, err := w.slot(m)
	if err != nil {
		return err
	}
	if s.status == Pending {
		return ErrPending
	}

	s.image = img
	if m == mode.Chat {
		s.gen++
		s.conv = localconversation.New(img, w.greeting)
		s.result = ""
		s.status = InputReady
		return nil
	}
	s.refresh()
	return nil
}

// SetInput задаёт параметры запроса: тип контента для распознавания и вопрос для DocumentQuery/VisualQA.
// Для чата параметров нет, текст передаётся при отправке.
func (w *Workspace) SetInput(m mode.Mode, ct mode.ContentType, question string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, err := w.slot(m)
	if err != nil {
		return err
	}
	if s.status == Pending {
		return ErrPending
	}
	switch m {
	case mode.SingleShotExtract:
		s.contentType = ct
	case mode.DocumentQuery, mode.VisualQA:
		s.question = question
	}
	s.refresh()
	return nil
}

// Begin проверяет ввод и переводит слот в Pending. Порядок проверок: ключ, картинка, вопрос.
// При ошибке проверки состояние не меняется.
// chatText используется только в режиме Chat: он добавляется в историю как реплика пользователя.
func (w *Workspace) Begin(m mode.Mode, chatText string) (Ticket, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, err := w.slot(m)
	if err != nil {
		return Ticket{}, err
	}
	if s.status == Pending {
		return Ticket{}, ErrPending
	}
	if w.credential == "" {
		return Ticket{}, ai.ErrMissingCredential
	}
	if s.image == nil {
		return Ticket{}, image.ErrMissingImage
	}

	params := prompt.Params{ContentType: s.contentType, Question: s.question}
	if m == mode.Chat {
		params.Question = chatText
	}
	text, err := prompt.Build(m, params)
	if err != nil {
		return Ticket{}, err
	}
	if m == mode.Chat && s.conv == nil {
		s.conv = localconversation.New(s.image, w.greeting)
	}
	msgs, err := message.Assemble(m, text, s.image, s.conv)
	if err != nil {
		return Ticket{}, err
	}

	t := Ticket{Mode: m, Gen: s.gen, ContentType: s.contentType, Credential: w.credential, Messages: msgs}
	if m == mode.Chat {
		s.conv.AppendUser(chatText)
		t.Conversation = s.conv.ID
	}
	s.status = Pending
	return t, nil
}

// Complete сохраняет результат вызова. Возвращает false, если тикет устарел
// (был сброс или новая картинка в чате) и результат отброшен.
func (w *Workspace) Complete(t Ticket, reply string, callErr error) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, err := w.slot(t.Mode)
	if err != nil || s.gen != t.Gen || s.status != Pending {
		return false
	}

	s.resultType = t.ContentType
	if callErr != nil {
		s.status = Failed
		s.result = callErr.Error()
		if s.conv != nil && t.Mode == mode.Chat {
			s.conv.AppendAssistant("Error: " + s.result)
		}
		return true
	}
	s.status = Resolved
	s.result = reply
	if s.conv != nil && t.Mode == mode.Chat {
		s.conv.AppendAssistant(reply)
	}
	return true
}

// Busy сообщает, что хотя бы по одному режиму идёт запрос.
func (w *Workspace) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.slots {
		if w.slots[i].status == Pending {
			return true
		}
	}
	return false
}

// Reset очищает все четыре слота разом. Ключ API сохраняется.
// Запросы, выданные до сброса, становятся устаревшими.
func (w *Workspace) Reset() {
	w.mu.Lock()
	for i := range w.slots {
		w.slots[i].clear()
	}
	w.mu.Unlock()
}

// Snapshot возвращает копию слота режима.
func (w *Workspace) Snapshot(m mode.Mode) (Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, err := w.slot(m)
	if err != nil {
		return Snapshot{}, err
	}
	return s.snapshot(), nil
}

// Snapshots возвращает копии всех слотов в порядке mode.All.
func (w *Workspace) Snapshots() []Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Snapshot, 0, len(w.slots))
	for i := range w.slots {
		out = append(out, w.slots[i].snapshot())
	}
	return out
}

func (s *slot) snapshot() Snapshot {
	snap := Snapshot{
		Mode:        s.mode,
		Status:      s.status,
		Image:       s.image,
		ContentType: s.contentType,
		Question:    s.question,
		Result:      s.result,
		ResultType:  s.resultType,
	}
	if s.conv != nil {
		snap.Turns = s.conv.Turns()
	}
	return snap
}

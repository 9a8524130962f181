package localconversation

import (
	"OCRVisionPro/internal/ai"
	"OCRVisionPro/internal/service/image"

	"github.com/google/uuid"
)

// Turn — одна реплика чата.
type Turn struct {
	Role ai.Role
	Text string
}

// Conversation — локальный диалог чата вокруг одной картинки.
// Удалённая модель состояния не хранит, поэтому вся история живёт здесь и
// пересылается целиком на каждый вызов.
type Conversation struct {
	ID    string
	Image *image.Ref

	turns []Turn
	// индекс первой реплики пользователя: к ней прикрепляется картинка; -1 — реплик пользователя ещё нет
	firstUser int
}

// New создаёт диалог для картинки. Непустой greeting добавляется первой репликой ассистента.
func New(img *image.Ref, greeting string) *Conversation {
	c := &Conversation{ID: uuid.NewString(), Image: img, firstUser: -1}
	if greeting != "" {
		c.turns = append(c.turns, Turn{Role: ai.RoleAssistant, Text: greeting})
	}
	return c
}

// AppendUser добавляет реплику пользователя.
func (c *Conversation) AppendUser(text string) {
	if c.firstUser < 0 {
		c.firstUser = len(c.turns)
	}
	c.turns = append(c.turns, Turn{Role: ai.RoleUser, Text: text})
}

// AppendAssistant добавляет ответ модели (или реплику об ошибке).
func (c *Conversation) AppendAssistant(text string) {
	c.turns = append(c.turns, Turn{Role: ai.RoleAssistant, Text: text})
}

// Turns возвращает копию истории.
func (c *Conversation) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

func (c *Conversation) Len() int { return len(c.turns) }

// FirstUserIndex — позиция первой реплики пользователя или -1.
func (c *Conversation) FirstUserIndex() int { return c.firstUser }

package ai

import "context"

// Client интерфейс удалённой модели. Все реализации должны быть взаимозаменяемыми.
// Модель не хранит состояния между вызовами: каждый вызов получает полный список сообщений.
type Client interface {
	Complete(ctx context.Context, credential string, messages []Message) (string, error)
}

// Role — автор сообщения.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message — одно сообщение запроса. Собирается заново на каждый вызов и нигде не хранится.
// Если ImageURL пуст, содержимое — простой текст, иначе пара [текст, изображение].
type Message struct {
	Role     Role
	Text     string
	ImageURL string // data URL изображения
}

// HasImage сообщает, приложено ли к сообщению изображение.
func (m Message) HasImage() bool { return m.ImageURL != "" }

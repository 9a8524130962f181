package ai

import (
	"context"
	"strings"
	"sync"
)

var _ Client = (*StubClient)(nil)

// StubClient заглушка, которая не делает реальных запросов.
// Запоминает число вызовов и последний список сообщений.
type StubClient struct {
	reply string

	mu    sync.Mutex
	calls int
	last  []Message
}

func NewStubClient() *StubClient { return &StubClient{reply: "запрос получен"} }

// NewStubClientWithReply — заглушка с заданным ответом.
func NewStubClientWithReply(reply string) *StubClient { return &StubClient{reply: reply} }

func (c *StubClient) Complete(_ context.Context, credential string, messages []Message) (string, error) {
	if strings.TrimSpace(credential) == "" {
		return "", ErrMissingCredential
	}
	c.mu.Lock()
	c.calls++
	c.last = append([]Message(nil), messages...)
	c.mu.Unlock()
	return c.reply, nil
}

// Calls — сколько раз заглушку вызывали.
func (c *StubClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// LastMessages — сообщения последнего вызова.
func (c *StubClient) LastMessages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.last...)
}

package sessions

import (
	"OCRVisionPro/internal/service/state"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type entry struct {
	ws       *state.Workspace
	lastSeen time.Time
}

// Manager хранит рабочие пространства браузерных сессий в памяти процесса.
// После перезапуска все сессии теряются.
type Manager struct {
	greeting string
	logger   *zap.SugaredLogger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

func New(greeting string, logger *zap.SugaredLogger) *Manager {
	return &Manager{greeting: greeting, logger: logger, now: time.Now, sessions: make(map[string]*entry)}
}

// Get возвращает рабочее пространство сессии id. Если id пуст или неизвестен,
// создаётся новая сессия; её id возвращается вторым значением.
func (m *Manager) Get(id string) (*state.Workspace, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.sessions[id]; ok && id != "" {
		e.lastSeen = m.now()
		return e.ws, id
	}
	id = uuid.NewString()
	m.sessions[id] = &entry{ws: state.New(m.greeting), lastSeen: m.now()}
	m.logger.Infow("Новая сессия", "sessions", len(m.sessions))
	return m.sessions[id].ws, id
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep удаляет сессии, к которым не обращались дольше ttl. Возвращает число удалённых.
// Сессия с незавершённым запросом не удаляется: её срок отсчитывается заново.
func (m *Manager) Sweep(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	cutoff := now.Add(-ttl)
	removed := 0
	for id, e := range m.sessions {
		if e.ws.Busy() {
			e.lastSeen = now
			continue
		}
		if e.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Run периодически чистит устаревшие сессии до отмены контекста.
func (m *Manager) Run(ctx context.Context, interval, ttl time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := m.Sweep(ttl); n > 0 {
				m.logger.Infow("Удалены неактивные сессии", "removed", n, "left", m.Len())
			}
		}
	}
}

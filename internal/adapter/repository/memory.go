package repository

import (
	"context"
	"sync"

	"github.com/eslsoft/kyoshi/internal/entity"
	"github.com/eslsoft/kyoshi/internal/repository"
)

// MemorySessionRepository keeps conversational state in process memory. It is
// the default session store for single-instance deployments and tests; state
// is lost on restart.
type MemorySessionRepository struct {
	mu         sync.RWMutex
	states     map[string]*entity.LessonState
	checklists map[string]*entity.Checklist
	messages   map[string][]entity.ChatMessage
	turns      map[string]struct{}
	historyCap int
}

var _ repository.SessionRepository = (*MemorySessionRepository)(nil)

// NewMemorySessionRepository builds an empty store.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		states:     make(map[string]*entity.LessonState),
		checklists: make(map[string]*entity.Checklist),
		messages:   make(map[string][]entity.ChatMessage),
		turns:      make(map[string]struct{}),
		historyCap: messageHistoryCap,
	}
}

func (r *MemorySessionRepository) LessonState(_ context.Context, chatID string) (*entity.LessonState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.states[chatID], nil
}

func (r *MemorySessionRepository) SaveLessonState(_ context.Context, state *entity.LessonState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[state.ChatID] = state
	return nil
}

func (r *MemorySessionRepository) ClearLessonState(_ context.Context, chatID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, chatID)
	return nil
}

func (r *MemorySessionRepository) Checklist(_ context.Context, chatID string) (*entity.Checklist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.checklists[chatID], nil
}

func (r *MemorySessionRepository) SaveChecklist(_ context.Context, checklist *entity.Checklist) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checklists[checklist.ChatID] = checklist
	return nil
}

func (r *MemorySessionRepository) ClearChecklist(_ context.Context, chatID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.checklists, chatID)
	return nil
}

func (r *MemorySessionRepository) AppendMessage(_ context.Context, chatID string, msg entity.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := append(r.messages[chatID], msg)
	if len(msgs) > r.historyCap {
		msgs = msgs[len(msgs)-r.historyCap:]
	}
	r.messages[chatID] = msgs
	return nil
}

func (r *MemorySessionRepository) RecentMessages(_ context.Context, chatID string, limit int) ([]entity.ChatMessage, error) {
	if limit <= 0 {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	msgs := r.messages[chatID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]entity.ChatMessage(nil), msgs...), nil
}

func (r *MemorySessionRepository) MarkTurn(_ context.Context, chatID, turnID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := chatID + "/" + turnID
	if _, ok := r.turns[key]; ok {
		return true, nil
	}
	r.turns[key] = struct{}{}
	return false, nil
}

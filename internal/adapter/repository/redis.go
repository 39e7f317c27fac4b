package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eslsoft/kyoshi/internal/entity"
	"github.com/eslsoft/kyoshi/internal/repository"
)

const (
	lessonStateKeyFmt = "kyoshi:lesson:%s"
	checklistKeyFmt   = "kyoshi:checklist:%s"
	messagesKeyFmt    = "kyoshi:messages:%s"
	turnKeyFmt        = "kyoshi:turn:%s:%s"

	// messageHistoryCap bounds the per-chat message list in Redis.
	messageHistoryCap = 50
	// turnTTL is how long a processed turn id is remembered for dedup.
	turnTTL = time.Hour
)

// RedisSessionRepository keeps conversational state in Redis so any server
// instance can continue a chat. Values are JSON; everything carries the
// session TTL so abandoned chats expire on their own.
type RedisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

var _ repository.SessionRepository = (*RedisSessionRepository)(nil)

// NewRedisSessionRepository wires the client. ttl <= 0 disables expiry.
func NewRedisSessionRepository(client *redis.Client, ttl time.Duration) *RedisSessionRepository {
	return &RedisSessionRepository{client: client, ttl: ttl}
}

func (r *RedisSessionRepository) LessonState(ctx context.Context, chatID string) (*entity.LessonState, error) {
	var state entity.LessonState
	ok, err := r.getJSON(ctx, fmt.Sprintf(lessonStateKeyFmt, chatID), &state)
	if err != nil || !ok {
		return nil, err
	}
	return &state, nil
}

func (r *RedisSessionRepository) SaveLessonState(ctx context.Context, state *entity.LessonState) error {
	return r.setJSON(ctx, fmt.Sprintf(lessonStateKeyFmt, state.ChatID), state)
}

func (r *RedisSessionRepository) ClearLessonState(ctx context.Context, chatID string) error {
	return r.client.Del(ctx, fmt.Sprintf(lessonStateKeyFmt, chatID)).Err()
}

func (r *RedisSessionRepository) Checklist(ctx context.Context, chatID string) (*entity.Checklist, error) {
	var checklist entity.Checklist
	ok, err := r.getJSON(ctx, fmt.Sprintf(checklistKeyFmt, chatID), &checklist)
	if err != nil || !ok {
		return nil, err
	}
	return &checklist, nil
}

func (r *RedisSessionRepository) SaveChecklist(ctx context.Context, checklist *entity.Checklist) error {
	return r.setJSON(ctx, fmt.Sprintf(checklistKeyFmt, checklist.ChatID), checklist)
}

func (r *RedisSessionRepository) ClearChecklist(ctx context.Context, chatID string) error {
	return r.client.Del(ctx, fmt.Sprintf(checklistKeyFmt, chatID)).Err()
}

func (r *RedisSessionRepository) AppendMessage(ctx context.Context, chatID string, msg entity.ChatMessage) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	key := fmt.Sprintf(messagesKeyFmt, chatID)
	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key, raw)
	pipe.LTrim(ctx, key, -messageHistoryCap, -1)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

func (r *RedisSessionRepository) RecentMessages(ctx context.Context, chatID string, limit int) ([]entity.ChatMessage, error) {
	if limit <= 0 {
		return nil, nil
	}
	key := fmt.Sprintf(messagesKeyFmt, chatID)
	raw, err := r.client.LRange(ctx, key, int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}
	out := make([]entity.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg entity.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("unmarshal message: %w", err)
		}
		out = append(out, msg)
	}
	return out, nil
}

func (r *RedisSessionRepository) MarkTurn(ctx context.Context, chatID, turnID string) (bool, error) {
	key := fmt.Sprintf(turnKeyFmt, chatID, turnID)
	created, err := r.client.SetNX(ctx, key, 1, turnTTL).Result()
	if err != nil {
		return false, fmt.Errorf("mark turn: %w", err)
	}
	return !created, nil
}

func (r *RedisSessionRepository) getJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (r *RedisSessionRepository) setJSON(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

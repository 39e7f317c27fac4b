package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eslsoft/kyoshi/internal/entity"
	"github.com/eslsoft/kyoshi/internal/infrastructure/database"
	"github.com/eslsoft/kyoshi/internal/repository"
)

// NewMasteryRepository returns the SQL-backed item mastery store.
func NewMasteryRepository(db *database.DB) repository.MasteryRepository {
	return &masteryRepository{db: db}
}

type masteryRepository struct {
	db *database.DB
}

const masteryColumns = `item_id, item_type, correct_count, incorrect_count, mastery_level,
	last_seen, last_correct, needs_review, day_introduced`

func (r *masteryRepository) Get(ctx context.Context, chatID, itemID string) (*entity.ItemMastery, error) {
	query := r.db.Rebind(`SELECT ` + masteryColumns + `
		FROM item_mastery WHERE chat_id = ? AND item_id = ?`)
	row := r.db.QueryRowContext(ctx, query, chatID, itemID)
	m, err := scanMastery(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get mastery: %w", err)
	}
	return m, nil
}

func (r *masteryRepository) Upsert(ctx context.Context, chatID string, m *entity.ItemMastery) error {
	query := r.db.Rebind(`INSERT INTO item_mastery
		(chat_id, item_id, item_type, correct_count, incorrect_count, mastery_level,
		 last_seen, last_correct, needs_review, day_introduced)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (chat_id, item_id) DO UPDATE SET
			item_type = excluded.item_type,
			correct_count = excluded.correct_count,
			incorrect_count = excluded.incorrect_count,
			mastery_level = excluded.mastery_level,
			last_seen = excluded.last_seen,
			last_correct = excluded.last_correct,
			needs_review = excluded.needs_review,
			day_introduced = excluded.day_introduced`)

	var lastCorrect sql.NullTime
	if m.LastCorrect != nil {
		lastCorrect = sql.NullTime{Time: *m.LastCorrect, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, query,
		chatID, m.ItemID, string(m.ItemType), m.CorrectCount, m.IncorrectCount,
		m.MasteryLevel, m.LastSeen, lastCorrect, m.NeedsReview, m.DayIntroduced)
	if err != nil {
		return fmt.Errorf("upsert mastery: %w", err)
	}
	return nil
}

func (r *masteryRepository) List(ctx context.Context, chatID string, page repository.Pagination) ([]entity.ItemMastery, error) {
	page.Normalize()
	query := r.db.Rebind(`SELECT ` + masteryColumns + `
		FROM item_mastery WHERE chat_id = ? ORDER BY item_id LIMIT ? OFFSET ?`)
	return r.queryMastery(ctx, query, chatID, page.PageSize, page.Offset())
}

func (r *masteryRepository) ListNeedingReview(ctx context.Context, chatID string, targetDay, belowLevel int) ([]entity.ItemMastery, error) {
	query := r.db.Rebind(`SELECT ` + masteryColumns + `
		FROM item_mastery
		WHERE chat_id = ? AND day_introduced < ? AND (needs_review OR mastery_level < ?)
		ORDER BY mastery_level, last_seen`)
	return r.queryMastery(ctx, query, chatID, targetDay, belowLevel)
}

func (r *masteryRepository) queryMastery(ctx context.Context, query string, args ...any) ([]entity.ItemMastery, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list mastery: %w", err)
	}
	defer rows.Close()

	var out []entity.ItemMastery
	for rows.Next() {
		m, err := scanMastery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mastery: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMastery(row rowScanner) (*entity.ItemMastery, error) {
	var (
		m           entity.ItemMastery
		itemType    string
		lastCorrect sql.NullTime
	)
	err := row.Scan(&m.ItemID, &itemType, &m.CorrectCount, &m.IncorrectCount,
		&m.MasteryLevel, &m.LastSeen, &lastCorrect, &m.NeedsReview, &m.DayIntroduced)
	if err != nil {
		return nil, err
	}
	m.ItemType = entity.ContentType(itemType)
	if lastCorrect.Valid {
		t := lastCorrect.Time
		m.LastCorrect = &t
	}
	return &m, nil
}

// NewWordProgressRepository returns the SQL-backed word exposure store.
func NewWordProgressRepository(db *database.DB) repository.WordProgressRepository {
	return &wordProgressRepository{db: db}
}

type wordProgressRepository struct {
	db *database.DB
}

const wordProgressColumns = `word, rank, status, times_seen, times_correct, last_seen`

func (r *wordProgressRepository) Get(ctx context.Context, chatID, word string) (*entity.WordProgress, error) {
	query := r.db.Rebind(`SELECT ` + wordProgressColumns + `
		FROM word_progress WHERE chat_id = ? AND word = ?`)
	row := r.db.QueryRowContext(ctx, query, chatID, word)
	p, err := scanWordProgress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get word progress: %w", err)
	}
	return p, nil
}

func (r *wordProgressRepository) Upsert(ctx context.Context, chatID string, p *entity.WordProgress) error {
	query := r.db.Rebind(`INSERT INTO word_progress
		(chat_id, word, rank, status, times_seen, times_correct, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (chat_id, word) DO UPDATE SET
			rank = excluded.rank,
			status = excluded.status,
			times_seen = excluded.times_seen,
			times_correct = excluded.times_correct,
			last_seen = excluded.last_seen`)
	_, err := r.db.ExecContext(ctx, query,
		chatID, p.Word, p.Rank, string(p.Status), p.TimesSeen, p.TimesCorrect, p.LastSeen)
	if err != nil {
		return fmt.Errorf("upsert word progress: %w", err)
	}
	return nil
}

func (r *wordProgressRepository) ListByStatus(ctx context.Context, chatID string, status entity.WordStatus) ([]entity.WordProgress, error) {
	query := r.db.Rebind(`SELECT ` + wordProgressColumns + `
		FROM word_progress WHERE chat_id = ? AND status = ? ORDER BY rank`)
	return r.queryWordProgress(ctx, query, chatID, string(status))
}

func (r *wordProgressRepository) ListAll(ctx context.Context, chatID string) ([]entity.WordProgress, error) {
	query := r.db.Rebind(`SELECT ` + wordProgressColumns + `
		FROM word_progress WHERE chat_id = ? ORDER BY rank`)
	return r.queryWordProgress(ctx, query, chatID)
}

func (r *wordProgressRepository) queryWordProgress(ctx context.Context, query string, args ...any) ([]entity.WordProgress, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list word progress: %w", err)
	}
	defer rows.Close()

	var out []entity.WordProgress
	for rows.Next() {
		p, err := scanWordProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan word progress: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanWordProgress(row rowScanner) (*entity.WordProgress, error) {
	var (
		p      entity.WordProgress
		status string
	)
	err := row.Scan(&p.Word, &p.Rank, &status, &p.TimesSeen, &p.TimesCorrect, &p.LastSeen)
	if err != nil {
		return nil, err
	}
	p.Status = entity.WordStatus(status)
	return &p, nil
}

// NewLearnerRepository returns the SQL-backed learner profile store.
func NewLearnerRepository(db *database.DB) repository.LearnerRepository {
	return &learnerRepository{db: db}
}

type learnerRepository struct {
	db *database.DB
}

func (r *learnerRepository) Profile(ctx context.Context, chatID string) (*entity.LearnerProfile, error) {
	query := r.db.Rebind(`SELECT chat_id, current_day, started_at, updated_at
		FROM learner_profiles WHERE chat_id = ?`)
	var p entity.LearnerProfile
	err := r.db.QueryRowContext(ctx, query, chatID).
		Scan(&p.ChatID, &p.CurrentDay, &p.StartedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (r *learnerRepository) SaveProfile(ctx context.Context, profile *entity.LearnerProfile) error {
	query := r.db.Rebind(`INSERT INTO learner_profiles (chat_id, current_day, started_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (chat_id) DO UPDATE SET
			current_day = excluded.current_day,
			started_at = excluded.started_at,
			updated_at = excluded.updated_at`)
	_, err := r.db.ExecContext(ctx, query,
		profile.ChatID, profile.CurrentDay, profile.StartedAt, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (r *learnerRepository) RecordCompletion(ctx context.Context, completion *entity.LessonCompletion) error {
	query := r.db.Rebind(`INSERT INTO lesson_completions (chat_id, day_number, score, passed, completed_at)
		VALUES (?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		completion.ChatID, completion.DayNumber, completion.Score, completion.Passed, completion.CompletedAt)
	if err != nil {
		return fmt.Errorf("record completion: %w", err)
	}
	return nil
}

func (r *learnerRepository) Completions(ctx context.Context, chatID string, page repository.Pagination) ([]entity.LessonCompletion, error) {
	page.Normalize()
	query := r.db.Rebind(`SELECT chat_id, day_number, score, passed, completed_at
		FROM lesson_completions WHERE chat_id = ? ORDER BY completed_at LIMIT ? OFFSET ?`)
	rows, err := r.db.QueryContext(ctx, query, chatID, page.PageSize, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	var out []entity.LessonCompletion
	for rows.Next() {
		var c entity.LessonCompletion
		if err := rows.Scan(&c.ChatID, &c.DayNumber, &c.Score, &c.Passed, &c.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

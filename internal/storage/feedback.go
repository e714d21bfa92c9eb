package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/transactai/transactai/internal/model"
)

// AppendFeedback appends one correction to the feedback log. The log is
// append-only: entries are never updated or rewritten, so concurrent
// appends through the single writer connection cannot corrupt each other.
func (s *SQLiteStorage) AppendFeedback(ctx context.Context, entry model.FeedbackEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(entry.CleanText, "clean_text"); err != nil {
		return err
	}
	if err := validateString(entry.CorrectedCategory, "corrected_category"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback
			(raw_text, clean_text, predicted_category, corrected_category, confidence)
		VALUES (?, ?, ?, ?, ?)`,
		entry.RawText, entry.CleanText, entry.PredictedCategory,
		entry.CorrectedCategory, entry.Confidence,
	)
	if err != nil {
		return fmt.Errorf("failed to append feedback: %w", err)
	}
	return nil
}

// GetFeedback returns every correction in the log, oldest first.
func (s *SQLiteStorage) GetFeedback(ctx context.Context) ([]model.FeedbackEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, raw_text, clean_text, predicted_category,
		       corrected_category, confidence, created_at
		FROM feedback
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	var entries []model.FeedbackEntry
	for rows.Next() {
		var entry model.FeedbackEntry
		if err := rows.Scan(
			&entry.ID, &entry.RawText, &entry.CleanText, &entry.PredictedCategory,
			&entry.CorrectedCategory, &entry.Confidence, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedback: %w", err)
	}
	return entries, nil
}

// CountFeedbackSince returns how many corrections arrived after the given
// time. The retrain scheduler uses it to skip runs with nothing new.
func (s *SQLiteStorage) CountFeedbackSince(ctx context.Context, since time.Time) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM feedback WHERE created_at > ?`, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count feedback: %w", err)
	}
	return count, nil
}

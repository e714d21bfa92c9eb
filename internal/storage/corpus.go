package storage

import (
	"context"
	"fmt"

	"github.com/transactai/transactai/internal/model"
)

// SaveTrainingExamples inserts examples into the training corpus,
// ignoring exact (clean_text, label) duplicates.
func (s *SQLiteStorage) SaveTrainingExamples(ctx context.Context, examples []model.TrainingExample) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(examples) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO training_examples (clean_text, label) VALUES (?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, ex := range examples {
		if ex.CleanText == "" || ex.Label == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, ex.CleanText, ex.Label); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert training example: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit training examples: %w", err)
	}
	return nil
}

// GetTrainingExamples returns the full training corpus.
func (s *SQLiteStorage) GetTrainingExamples(ctx context.Context) ([]model.TrainingExample, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT clean_text, label FROM training_examples ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query training examples: %w", err)
	}
	defer rows.Close()

	var examples []model.TrainingExample
	for rows.Next() {
		var ex model.TrainingExample
		if err := rows.Scan(&ex.CleanText, &ex.Label); err != nil {
			return nil, fmt.Errorf("failed to scan training example: %w", err)
		}
		examples = append(examples, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating training examples: %w", err)
	}
	return examples, nil
}

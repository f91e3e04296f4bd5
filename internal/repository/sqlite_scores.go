package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/abrezinsky/crowntally/internal/models"
)

// ==================== Score Methods ====================

// ListScores returns scores matching the filter, ordered by id so a
// judge's per-criterion writes surface in insertion order
func (r *Repository) ListScores(ctx context.Context, f ScoreFilter) ([]models.Score, error) {
	query := `SELECT id, pageant_id, round_id, criteria_id, contestant_id, judge_id, value, updated_at FROM scores`
	var conds []string
	var args []interface{}

	if f.PageantID != 0 {
		conds = append(conds, "pageant_id = ?")
		args = append(args, f.PageantID)
	}
	if f.RoundID != 0 {
		conds = append(conds, "round_id = ?")
		args = append(args, f.RoundID)
	}
	if f.ContestantID != 0 {
		conds = append(conds, "contestant_id = ?")
		args = append(args, f.ContestantID)
	}
	if f.JudgeID != 0 {
		conds = append(conds, "judge_id = ?")
		args = append(args, f.JudgeID)
	}
	if f.CriteriaID != 0 {
		conds = append(conds, "criteria_id = ?")
		args = append(args, f.CriteriaID)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []models.Score
	for rows.Next() {
		s, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, *s)
	}
	return scores, rows.Err()
}

// GetScore retrieves a score by ID
func (r *Repository) GetScore(ctx context.Context, id int) (*models.Score, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, pageant_id, round_id, criteria_id, contestant_id, judge_id, value, updated_at
		FROM scores WHERE id = ?
	`, id)
	s, err := scanScore(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// SaveScore inserts or updates the score for its unique tuple and
// returns the persisted row. Last writer wins on the unique tuple.
func (r *Repository) SaveScore(ctx context.Context, s models.Score) (*models.Score, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scores (pageant_id, round_id, criteria_id, contestant_id, judge_id, value)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(round_id, criteria_id, contestant_id, judge_id)
		DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, s.PageantID, s.RoundID, s.CriteriaID, s.ContestantID, s.JudgeID, s.Value)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, pageant_id, round_id, criteria_id, contestant_id, judge_id, value, updated_at
		FROM scores WHERE round_id = ? AND criteria_id = ? AND contestant_id = ? AND judge_id = ?
	`, s.RoundID, s.CriteriaID, s.ContestantID, s.JudgeID)
	saved, err := scanScore(row)
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// DeleteScore deletes a score by ID
func (r *Repository) DeleteScore(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM scores WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanScore(row rowScanner) (*models.Score, error) {
	var s models.Score
	var updatedAt sql.NullString
	err := row.Scan(&s.ID, &s.PageantID, &s.RoundID, &s.CriteriaID, &s.ContestantID, &s.JudgeID, &s.Value, &updatedAt)
	if err != nil {
		return nil, err
	}
	if updatedAt.Valid {
		s.UpdatedAt = updatedAt.String
	}
	return &s, nil
}

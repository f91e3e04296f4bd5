package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/abrezinsky/crowntally/internal/models"
)

// ==================== Contestant Methods ====================

// CreateContestant inserts a new contestant. For pair contestants the
// member references are checked so each solo contestant belongs to at
// most one pair.
func (r *Repository) CreateContestant(ctx context.Context, c models.Contestant) (int64, error) {
	if c.IsPair {
		if err := r.checkPairMembers(ctx, 0, c.MemberOneID, c.MemberTwoID); err != nil {
			return 0, err
		}
	}
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO contestants (pageant_id, number, name, gender, is_pair, member_one_id, member_two_id, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, c.PageantID, c.Number, c.Name, c.Gender, c.IsPair, c.MemberOneID, c.MemberTwoID, c.Active)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetContestant retrieves a contestant by ID
func (r *Repository) GetContestant(ctx context.Context, id int) (*models.Contestant, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, pageant_id, number, name, gender, is_pair, member_one_id, member_two_id, active
		FROM contestants WHERE id = ?
	`, id)
	c, err := scanContestant(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListContestants returns a pageant's active contestants by number
func (r *Repository) ListContestants(ctx context.Context, pageantID int) ([]models.Contestant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pageant_id, number, name, gender, is_pair, member_one_id, member_two_id, active
		FROM contestants WHERE pageant_id = ? AND active = 1 ORDER BY number, id
	`, pageantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contestants []models.Contestant
	for rows.Next() {
		c, err := scanContestant(rows)
		if err != nil {
			return nil, err
		}
		contestants = append(contestants, *c)
	}
	return contestants, rows.Err()
}

// UpdateContestant updates a contestant
func (r *Repository) UpdateContestant(ctx context.Context, c models.Contestant) error {
	if c.IsPair {
		if err := r.checkPairMembers(ctx, c.ID, c.MemberOneID, c.MemberTwoID); err != nil {
			return err
		}
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE contestants SET number = ?, name = ?, gender = ?, is_pair = ?, member_one_id = ?, member_two_id = ?, active = ?
		WHERE id = ?
	`, c.Number, c.Name, c.Gender, c.IsPair, c.MemberOneID, c.MemberTwoID, c.Active, c.ID)
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

// DeleteContestant deletes a contestant and its scores
func (r *Repository) DeleteContestant(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM contestants WHERE id = ?`, id)
	return err
}

// checkPairMembers enforces the one-pair-per-member invariant across
// both member columns. The partial unique indexes only cover the same
// column, so the cross-column case is checked here.
func (r *Repository) checkPairMembers(ctx context.Context, pairID int, members ...*int) error {
	for _, m := range members {
		if m == nil {
			continue
		}
		var count int
		err := r.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM contestants
			WHERE (member_one_id = ? OR member_two_id = ?) AND id != ?
		`, *m, *m, pairID).Scan(&count)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: contestant %d", ErrPairMemberTaken, *m)
		}
	}
	return nil
}

func scanContestant(row rowScanner) (*models.Contestant, error) {
	var c models.Contestant
	var memberOne, memberTwo sql.NullInt64
	err := row.Scan(&c.ID, &c.PageantID, &c.Number, &c.Name, &c.Gender, &c.IsPair,
		&memberOne, &memberTwo, &c.Active)
	if err != nil {
		return nil, err
	}
	if memberOne.Valid {
		id := int(memberOne.Int64)
		c.MemberOneID = &id
	}
	if memberTwo.Valid {
		id := int(memberTwo.Int64)
		c.MemberTwoID = &id
	}
	return &c, nil
}

// ==================== Judge Methods ====================

// CreateJudge inserts a new judge
func (r *Repository) CreateJudge(ctx context.Context, j models.Judge) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO judges (name, email, access_code) VALUES (?, ?, ?)
	`, j.Name, j.Email, j.AccessCode)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetJudge retrieves a judge by ID
func (r *Repository) GetJudge(ctx context.Context, id int) (*models.Judge, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, access_code FROM judges WHERE id = ?
	`, id)
	return scanJudgeRow(row)
}

// GetJudgeByAccessCode retrieves a judge by sign-in code
func (r *Repository) GetJudgeByAccessCode(ctx context.Context, code string) (*models.Judge, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, access_code FROM judges WHERE access_code = ?
	`, code)
	return scanJudgeRow(row)
}

// ListJudges returns the judges assigned to a pageant
func (r *Repository) ListJudges(ctx context.Context, pageantID int) ([]models.Judge, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT j.id, j.name, j.email, j.access_code
		FROM judges j
		JOIN pageant_judges pj ON pj.judge_id = j.id
		WHERE pj.pageant_id = ?
		ORDER BY j.name, j.id
	`, pageantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var judges []models.Judge
	for rows.Next() {
		var j models.Judge
		var email sql.NullString
		if err := rows.Scan(&j.ID, &j.Name, &email, &j.AccessCode); err != nil {
			return nil, err
		}
		if email.Valid {
			j.Email = email.String
		}
		judges = append(judges, j)
	}
	return judges, rows.Err()
}

// AssignJudge adds a judge to a pageant's panel
func (r *Repository) AssignJudge(ctx context.Context, pageantID, judgeID int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO pageant_judges (pageant_id, judge_id) VALUES (?, ?)
	`, pageantID, judgeID)
	return err
}

// UnassignJudge removes a judge from a pageant's panel
func (r *Repository) UnassignJudge(ctx context.Context, pageantID, judgeID int) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM pageant_judges WHERE pageant_id = ? AND judge_id = ?
	`, pageantID, judgeID)
	return err
}

// IsJudgeAssigned reports whether a judge sits on a pageant's panel
func (r *Repository) IsJudgeAssigned(ctx context.Context, pageantID, judgeID int) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM pageant_judges WHERE pageant_id = ? AND judge_id = ?
	`, pageantID, judgeID).Scan(&count)
	return count > 0, err
}

// DeleteJudge deletes a judge, their assignments and their scores
func (r *Repository) DeleteJudge(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM judges WHERE id = ?`, id)
	return err
}

func scanJudgeRow(row rowScanner) (*models.Judge, error) {
	var j models.Judge
	var email sql.NullString
	err := row.Scan(&j.ID, &j.Name, &email, &j.AccessCode)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if email.Valid {
		j.Email = email.String
	}
	return &j, nil
}

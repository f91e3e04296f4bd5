package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/abrezinsky/crowntally/internal/models"
)

// ==================== Pageant Methods ====================

// CreatePageant inserts a new pageant
func (r *Repository) CreatePageant(ctx context.Context, p models.Pageant) (int64, error) {
	inheritance, err := marshalInheritance(p.FinalScoreInheritance)
	if err != nil {
		return 0, err
	}
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO pageants (name, ranking_method, tie_handling, contestant_type, final_score_mode, final_score_inheritance)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.Name, string(p.RankingMethod), string(p.TieHandling), string(p.ContestantType), string(p.FinalScoreMode), inheritance)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetPageant retrieves a pageant by ID
func (r *Repository) GetPageant(ctx context.Context, id int) (*models.Pageant, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, ranking_method, tie_handling, contestant_type, final_score_mode, final_score_inheritance, created_at
		FROM pageants WHERE id = ?
	`, id)
	p, err := scanPageant(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPageants returns all pageants ordered by creation
func (r *Repository) ListPageants(ctx context.Context) ([]models.Pageant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, ranking_method, tie_handling, contestant_type, final_score_mode, final_score_inheritance, created_at
		FROM pageants ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pageants []models.Pageant
	for rows.Next() {
		p, err := scanPageant(rows)
		if err != nil {
			return nil, err
		}
		pageants = append(pageants, *p)
	}
	return pageants, rows.Err()
}

// UpdatePageant updates pageant configuration
func (r *Repository) UpdatePageant(ctx context.Context, p models.Pageant) error {
	inheritance, err := marshalInheritance(p.FinalScoreInheritance)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE pageants
		SET name = ?, ranking_method = ?, tie_handling = ?, contestant_type = ?, final_score_mode = ?, final_score_inheritance = ?
		WHERE id = ?
	`, p.Name, string(p.RankingMethod), string(p.TieHandling), string(p.ContestantType), string(p.FinalScoreMode), inheritance, p.ID)
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

// DeletePageant deletes a pageant and, via cascades, its rounds,
// criteria, contestants and scores
func (r *Repository) DeletePageant(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pageants WHERE id = ?`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPageant(row rowScanner) (*models.Pageant, error) {
	var p models.Pageant
	var inheritance sql.NullString
	var createdAt sql.NullString
	err := row.Scan(&p.ID, &p.Name, (*string)(&p.RankingMethod), (*string)(&p.TieHandling),
		(*string)(&p.ContestantType), (*string)(&p.FinalScoreMode), &inheritance, &createdAt)
	if err != nil {
		return nil, err
	}
	if inheritance.Valid && inheritance.String != "" {
		if err := json.Unmarshal([]byte(inheritance.String), &p.FinalScoreInheritance); err != nil {
			return nil, err
		}
	}
	if createdAt.Valid {
		p.CreatedAt = createdAt.String
	}
	return &p, nil
}

func marshalInheritance(m map[string]float64) (interface{}, error) {
	if len(m) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// ==================== Round Methods ====================

// CreateRound inserts a new round
func (r *Repository) CreateRound(ctx context.Context, round models.Round) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO rounds (pageant_id, name, type, weight, display_order, top_n_proceed, previous_type)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, round.PageantID, round.Name, round.Type, round.Weight, round.DisplayOrder, round.TopNProceed, nullIfEmpty(round.PreviousType))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetRound retrieves a round by ID
func (r *Repository) GetRound(ctx context.Context, id int) (*models.Round, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, pageant_id, name, type, weight, display_order, top_n_proceed, previous_type
		FROM rounds WHERE id = ?
	`, id)
	round, err := scanRound(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return round, nil
}

// ListRounds returns a pageant's rounds in display order
func (r *Repository) ListRounds(ctx context.Context, pageantID int) ([]models.Round, error) {
	return r.queryRounds(ctx, `
		SELECT id, pageant_id, name, type, weight, display_order, top_n_proceed, previous_type
		FROM rounds WHERE pageant_id = ? ORDER BY display_order, id
	`, pageantID)
}

// ListRoundsByType returns the rounds forming one stage, in display order
func (r *Repository) ListRoundsByType(ctx context.Context, pageantID int, stageType string) ([]models.Round, error) {
	return r.queryRounds(ctx, `
		SELECT id, pageant_id, name, type, weight, display_order, top_n_proceed, previous_type
		FROM rounds WHERE pageant_id = ? AND type = ? ORDER BY display_order, id
	`, pageantID, stageType)
}

// ListStageTypes returns the distinct round types of a pageant ordered by
// the earliest display_order of each type's rounds. The last entry is
// the final stage.
func (r *Repository) ListStageTypes(ctx context.Context, pageantID int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT type FROM rounds WHERE pageant_id = ?
		GROUP BY type ORDER BY MIN(display_order), MIN(id)
	`, pageantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// UpdateRound updates a round
func (r *Repository) UpdateRound(ctx context.Context, round models.Round) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE rounds SET name = ?, type = ?, weight = ?, display_order = ?, top_n_proceed = ?, previous_type = ?
		WHERE id = ?
	`, round.Name, round.Type, round.Weight, round.DisplayOrder, round.TopNProceed, nullIfEmpty(round.PreviousType), round.ID)
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

// DeleteRound deletes a round and its criteria and scores
func (r *Repository) DeleteRound(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM rounds WHERE id = ?`, id)
	return err
}

func (r *Repository) queryRounds(ctx context.Context, query string, args ...interface{}) ([]models.Round, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []models.Round
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, *round)
	}
	return rounds, rows.Err()
}

func scanRound(row rowScanner) (*models.Round, error) {
	var round models.Round
	var topN sql.NullInt64
	var prevType sql.NullString
	err := row.Scan(&round.ID, &round.PageantID, &round.Name, &round.Type, &round.Weight,
		&round.DisplayOrder, &topN, &prevType)
	if err != nil {
		return nil, err
	}
	if topN.Valid {
		n := int(topN.Int64)
		round.TopNProceed = &n
	}
	if prevType.Valid {
		round.PreviousType = prevType.String
	}
	return &round, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// ==================== Criteria Methods ====================

// CreateCriteria inserts a new criterion
func (r *Repository) CreateCriteria(ctx context.Context, c models.Criteria) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO criteria (round_id, name, segment, weight, min_score, max_score, allow_decimals, decimal_places, display_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.RoundID, c.Name, nullIfEmpty(c.Segment), c.Weight, c.MinScore, c.MaxScore, c.AllowDecimals, c.DecimalPlaces, c.DisplayOrder)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetCriteria retrieves a criterion by ID
func (r *Repository) GetCriteria(ctx context.Context, id int) (*models.Criteria, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, round_id, name, segment, weight, min_score, max_score, allow_decimals, decimal_places, display_order
		FROM criteria WHERE id = ?
	`, id)
	c, err := scanCriteria(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCriteriaByRound returns a round's criteria in display order
func (r *Repository) ListCriteriaByRound(ctx context.Context, roundID int) ([]models.Criteria, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, round_id, name, segment, weight, min_score, max_score, allow_decimals, decimal_places, display_order
		FROM criteria WHERE round_id = ? ORDER BY display_order, id
	`, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var criteria []models.Criteria
	for rows.Next() {
		c, err := scanCriteria(rows)
		if err != nil {
			return nil, err
		}
		criteria = append(criteria, *c)
	}
	return criteria, rows.Err()
}

// UpdateCriteria updates a criterion
func (r *Repository) UpdateCriteria(ctx context.Context, c models.Criteria) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE criteria SET name = ?, segment = ?, weight = ?, min_score = ?, max_score = ?, allow_decimals = ?, decimal_places = ?, display_order = ?
		WHERE id = ?
	`, c.Name, nullIfEmpty(c.Segment), c.Weight, c.MinScore, c.MaxScore, c.AllowDecimals, c.DecimalPlaces, c.DisplayOrder, c.ID)
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

// DeleteCriteria deletes a criterion and its scores
func (r *Repository) DeleteCriteria(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM criteria WHERE id = ?`, id)
	return err
}

func scanCriteria(row rowScanner) (*models.Criteria, error) {
	var c models.Criteria
	var segment sql.NullString
	err := row.Scan(&c.ID, &c.RoundID, &c.Name, &segment, &c.Weight, &c.MinScore, &c.MaxScore,
		&c.AllowDecimals, &c.DecimalPlaces, &c.DisplayOrder)
	if err != nil {
		return nil, err
	}
	if segment.Valid {
		c.Segment = segment.String
	}
	return &c, nil
}

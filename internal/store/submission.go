package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"essencialform/internal/utils"
	"essencialform/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const submissionTableName = "submissions"

var submissionColumns = utils.StructTagValues(types.Submission{})

type SubmissionRepository struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// Create inserts a submission as a single atomic statement and fills in the
// generated id and timestamps. A unique-constraint conflict is surfaced as
// types.ErrDuplicateSubmission so the HTTP layer can answer 409 instead of 500.
func (r *SubmissionRepository) Create(ctx context.Context, sub *types.Submission) error {
	now := time.Now()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	values := utils.StructToMap(sub)
	delete(values, "id")

	query, args, err := psql().
		Insert(submissionTableName).
		SetMap(values).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create submission query: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&sub.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return types.ErrDuplicateSubmission
		}
		return fmt.Errorf("failed to create submission: %w", err)
	}

	return nil
}

func (r *SubmissionRepository) Submission(ctx context.Context, id int64) (*types.Submission, error) {
	query, args, err := psql().
		Select(submissionColumns...).
		From(submissionTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate submission query: %w", err)
	}

	var sub types.Submission
	err = pgxscan.Get(ctx, r.pool, &sub, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to fetch submission: %w", err)
	}

	return &sub, nil
}

// Submissions returns every submission, newest first.
func (r *SubmissionRepository) Submissions(ctx context.Context) ([]*types.Submission, error) {
	query, args, err := psql().
		Select(submissionColumns...).
		From(submissionTableName).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate submissions query: %w", err)
	}

	subs := make([]*types.Submission, 0)
	err = pgxscan.Select(ctx, r.pool, &subs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submissions: %w", err)
	}

	return subs, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

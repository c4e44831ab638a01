package store

import (
	"errors"
	"fmt"
	"testing"

	"essencialform/internal/utils"
	"essencialform/pkg/types"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "submissions_cpf_key"}

	assert.True(t, isUniqueViolation(unique))
	assert.True(t, isUniqueViolation(fmt.Errorf("failed to create submission: %w", unique)))

	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
	assert.False(t, isUniqueViolation(nil))
}

func TestSubmissionColumns(t *testing.T) {
	assert.Contains(t, submissionColumns, "id")
	assert.Contains(t, submissionColumns, "cpf")
	assert.Contains(t, submissionColumns, "bank_name")

	// Documents are attached from their own table, never selected here.
	assert.NotContains(t, submissionColumns, "-")
	assert.NotContains(t, submissionColumns, "documents")
}

func TestSubmissionInsertValues(t *testing.T) {
	sub := &types.Submission{FullName: "Maria", Phone: "11987654321"}

	values := utils.StructToMap(sub)
	delete(values, "id")

	assert.NotContains(t, values, "id")
	assert.Equal(t, "Maria", values["full_name"])
	assert.NotContains(t, values, "documents")
}

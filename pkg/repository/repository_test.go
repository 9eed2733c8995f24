package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/steward/pkg/repository"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
)

func TestMapError(t *testing.T) {
	other := errors.New("some other error")
	fk := &pgconn.PgError{Code: "23503"}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, errNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), errNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, errDuplicate},
		{"other pg error", fk, fk},
		{"passthrough", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.MapError(tt.err, errNotFound, errDuplicate)
			if got != tt.want {
				t.Errorf("MapError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

type brokenStatement struct{}

func (brokenStatement) ToSql() (string, []any, error) {
	return "", nil, errors.New("unknown field")
}

func TestStatementBuildErrors(t *testing.T) {
	ctx := context.Background()
	scan := func(s repository.Scanner) (int, error) { return 0, nil }

	if _, err := repository.QueryOneStmt(ctx, nil, brokenStatement{}, scan); err == nil {
		t.Error("QueryOneStmt: expected build error")
	}
	if _, err := repository.QueryManyStmt(ctx, nil, brokenStatement{}, scan); err == nil {
		t.Error("QueryManyStmt: expected build error")
	}
	if err := repository.ExecStmtExpectOne(ctx, nil, brokenStatement{}); err == nil {
		t.Error("ExecStmtExpectOne: expected build error")
	}
}

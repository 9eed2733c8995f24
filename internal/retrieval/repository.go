package retrieval

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/JaimeStill/steward/internal/workflow"
	"github.com/JaimeStill/steward/pkg/pagination"
	"github.com/JaimeStill/steward/pkg/query"
	"github.com/JaimeStill/steward/pkg/repository"
)

// textSearchConfig is the Postgres text search configuration used both by
// the generated search column and by queries against it.
const textSearchConfig = "english"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a passage repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "retrieval"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func searchStatement(q string, k int) sq.SelectBuilder {
	tsq := "websearch_to_tsquery('" + textSearchConfig + "', ?)"
	rank := sq.Expr("ts_rank(p.search, "+tsq+") AS score", q)

	return psql.
		Select("p.text", "p.source").
		Column(rank).
		From("public.passages p").
		Where("p.search @@ "+tsq, q).
		OrderBy("score DESC", "p.created_at ASC").
		Limit(uint64(k))
}

// Retrieve returns up to k passages matching q, best first. An empty query
// returns no passages.
func (r *repo) Retrieve(ctx context.Context, q string, k int) ([]workflow.Passage, error) {
	if strings.TrimSpace(q) == "" || k < 1 {
		return nil, nil
	}

	passages, err := repository.QueryManyStmt(ctx, r.db, searchStatement(q, k), func(s repository.Scanner) (workflow.Passage, error) {
		var p workflow.Passage
		err := s.Scan(&p.Text, &p.Source, &p.Score)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", workflow.ErrRetrieval, err)
	}

	r.logger.DebugContext(ctx, "passages retrieved", "query", q, "k", k, "found", len(passages))
	return passages, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Passage], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Source", "Text")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs, err := qb.BuildCount()
	if err != nil {
		return nil, fmt.Errorf("build count: %w", err)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count passages: %w", err)
	}

	pageSQL, pageArgs, err := qb.BuildPage(page.Page, page.PageSize)
	if err != nil {
		return nil, fmt.Errorf("build page: %w", err)
	}

	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanPassage)
	if err != nil {
		return nil, fmt.Errorf("query passages: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Passage, error) {
	q, args, err := query.NewBuilder(projection).BuildSingle("ID", id)
	if err != nil {
		return nil, err
	}

	p, err := repository.QueryOne(ctx, r.db, q, args, scanPassage)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (r *repo) Index(ctx context.Context, cmd IndexCommand) (*Passage, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	stmt := psql.
		Insert("passages").
		Columns("source", "text").
		Values(strings.TrimSpace(cmd.Source), strings.TrimSpace(cmd.Text)).
		Suffix("RETURNING id, source, text, created_at")

	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Passage, error) {
		return repository.QueryOneStmt(ctx, tx, stmt, scanPassage)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("passage indexed", "id", p.ID, "source", p.Source)
	return &p, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	stmt := psql.Delete("passages").Where(sq.Eq{"id": id})

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecStmtExpectOne(ctx, tx, stmt)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("passage deleted", "id", id)
	return nil
}

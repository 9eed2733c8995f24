package triage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/steward/internal/mail"
	"github.com/JaimeStill/steward/internal/workflow"
	"github.com/JaimeStill/steward/pkg/pagination"
	"github.com/JaimeStill/steward/pkg/query"
	"github.com/JaimeStill/steward/pkg/repository"
	"github.com/JaimeStill/steward/pkg/storage"
)

// persistTimeout bounds result recording, which runs detached from the
// request context so interrupted runs are still recorded.
const persistTimeout = 15 * time.Second

type repo struct {
	instance   uuid.UUID
	db         *sql.DB
	rt         *workflow.Runtime
	store      storage.System
	outbox     *Outbox
	queue      Enqueuer
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an email repository implementing the System interface.
// A nil queue leaves submitted emails queued until Requeue or Process.
func New(
	db *sql.DB,
	rt *workflow.Runtime,
	store storage.System,
	publisher Publisher,
	queue Enqueuer,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	logger = logger.With("system", "triage")

	var archive Archiver
	if store != nil {
		archive = store
	}

	return &repo{
		instance:   uuid.New(),
		db:         db,
		rt:         rt,
		store:      store,
		outbox:     NewOutbox(archive, publisher, logger),
		queue:      queue,
		logger:     logger,
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Submit(ctx context.Context, cmd SubmitCommand) (*Email, error) {
	e, err := r.insert(ctx, cmd)
	if err != nil {
		return nil, err
	}

	if r.queue != nil {
		if err := r.queue.Submit(ctx, e.ID); err != nil {
			r.logger.WarnContext(ctx, "email stored but not enqueued", "id", e.ID, "error", err)
		}
	}

	return e, nil
}

func (r *repo) Triage(ctx context.Context, cmd SubmitCommand) (*workflow.Result, error) {
	e, err := r.insert(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return r.Process(ctx, e.ID)
}

func (r *repo) insert(ctx context.Context, cmd SubmitCommand) (*Email, error) {
	msg, err := mail.Normalize(cmd)
	if err != nil {
		return nil, err
	}

	q := `
		INSERT INTO emails(sender, subject, body)
		VALUES ($1, $2, $3)
		RETURNING ` + columns

	e, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Email, error) {
		return repository.QueryOne(ctx, tx, q, []any{msg.Sender, msg.Subject, msg.Body}, scanEmail)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("email submitted", "id", e.ID, "sender", e.Sender)
	return &e, nil
}

func (r *repo) Process(ctx context.Context, id uuid.UUID) (*workflow.Result, error) {
	e, err := r.claim(ctx, id)
	if err != nil {
		return nil, err
	}

	result := workflow.Execute(ctx, r.rt, e.Input())
	processedAt := time.Now().UTC()

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if err := r.complete(pctx, id, result, processedAt); err != nil {
		r.logger.Error("result not recorded", "id", id, "outcome", result.Outcome, "error", err)
		return result, fmt.Errorf("record result: %w", err)
	}

	r.logger.Info("email processed",
		"id", id,
		"outcome", result.Outcome,
		"reason", result.Reason,
		"category", result.Category,
		"revisions", result.Revisions,
	)

	if err := r.outbox.Release(pctx, e.Input(), result, processedAt); err != nil {
		r.logger.Error("result not released", "id", id, "outcome", result.Outcome, "error", err)
		return result, err
	}

	return result, nil
}

// claim moves a queued email to processing under this instance. Concurrent
// claims for the same email resolve to exactly one winner.
func (r *repo) claim(ctx context.Context, id uuid.UUID) (*Email, error) {
	q := `
		UPDATE emails SET status = 'processing', claimed_by = $2
		WHERE id = $1 AND status = 'queued'
		RETURNING ` + columns

	e, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Email, error) {
		return repository.QueryOne(ctx, tx, q, []any{id, r.instance}, scanEmail)
	})
	if err == nil {
		return &e, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("claim email: %w", err)
	}

	if _, ferr := r.Find(ctx, id); ferr != nil {
		return nil, ferr
	}
	return nil, ErrNotQueued
}

func (r *repo) complete(ctx context.Context, id uuid.UUID, result *workflow.Result, processedAt time.Time) error {
	var reply *string
	if result.Draft != nil {
		reply = &result.Draft.Body
	}

	var category *string
	if result.Category != "" {
		c := string(result.Category)
		category = &c
	}

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, `
			UPDATE emails
			SET status = 'completed', outcome = $1, reason = $2, category = $3,
				revisions = $4, reply = $5, processed_at = $6
			WHERE id = $7 AND status = 'processing'`,
			string(result.Outcome), string(result.Reason), category,
			result.Revisions, reply, processedAt, id,
		)
	})
	return err
}

func (r *repo) Requeue(ctx context.Context) ([]uuid.UUID, error) {
	reset, err := r.db.ExecContext(ctx, `
		UPDATE emails SET status = 'queued', claimed_by = NULL
		WHERE status = 'processing' AND claimed_by IS DISTINCT FROM $1`,
		r.instance,
	)
	if err != nil {
		return nil, fmt.Errorf("reset interrupted emails: %w", err)
	}
	if n, _ := reset.RowsAffected(); n > 0 {
		r.logger.Warn("interrupted emails returned to queue", "count", n)
	}

	ids, err := repository.QueryMany(ctx, r.db,
		"SELECT id FROM emails WHERE status = 'queued' ORDER BY received_at ASC",
		nil,
		func(s repository.Scanner) (uuid.UUID, error) {
			var id uuid.UUID
			err := s.Scan(&id)
			return id, err
		},
	)
	if err != nil {
		return nil, fmt.Errorf("list queued emails: %w", err)
	}
	return ids, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Email], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Sender", "Subject", "Body")

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
		return nil, fmt.Errorf("count emails: %w", err)
	}

	pageSQL, pageArgs, err := qb.BuildPage(page.Page, page.PageSize)
	if err != nil {
		return nil, fmt.Errorf("build page: %w", err)
	}

	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanEmail)
	if err != nil {
		return nil, fmt.Errorf("query emails: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Email, error) {
	q, args, err := query.NewBuilder(projection).BuildSingle("ID", id)
	if err != nil {
		return nil, err
	}

	e, err := repository.QueryOne(ctx, r.db, q, args, scanEmail)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &e, nil
}

func (r *repo) Archive(ctx context.Context, id uuid.UUID) (io.ReadCloser, error) {
	if r.store == nil {
		return nil, ErrNotFound
	}

	rc, err := r.store.Download(ctx, ArchiveKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrArchive, err)
	}
	return rc, nil
}

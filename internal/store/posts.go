package store

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Posts exposes the paginated content listing.
type Posts interface {
	repository.Repository[*Post]

	ListPage(ctx context.Context, page, perPage int) ([]*Post, int, error)
}

type posts struct {
	repository.Repository[*Post]
	db *bun.DB
}

var _ Posts = (*posts)(nil)

// NewPostsRepository builds the posts repository.
func NewPostsRepository(db *bun.DB) Posts {
	repo := repository.NewRepository[*Post](db, repository.ModelHandlers[*Post]{
		NewRecord: func() *Post { return &Post{} },
		GetID: func(p *Post) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Post, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &posts{
		Repository: repo,
		db:         db,
	}
}

func (p *posts) Create(ctx context.Context, record *Post, criteria ...repository.InsertCriteria) (*Post, error) {
	return p.CreateTx(ctx, p.db, record, criteria...)
}

func (p *posts) CreateTx(ctx context.Context, tx bun.IDB, record *Post, criteria ...repository.InsertCriteria) (*Post, error) {
	if record != nil && record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return p.Repository.CreateTx(ctx, tx, record, criteria...)
}

// ListPage returns one page of posts in insertion order plus the total count.
func (p *posts) ListPage(ctx context.Context, page, perPage int) ([]*Post, int, error) {
	if page < 1 {
		page = 1
	}

	var records []*Post
	total, err := p.db.NewSelect().
		Model(&records).
		Order("created_at ASC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		ScanAndCount(ctx)

	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

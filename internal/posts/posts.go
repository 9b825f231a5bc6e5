// Package posts serves the paginated content listing.
package posts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/monarq/account-api/internal/auth"
	"github.com/monarq/account-api/internal/store"
)

// DefaultItemPerPage is the page size when the client does not pick one.
const DefaultItemPerPage = 12

// MaxItemPerPage bounds how much a single request can pull.
const MaxItemPerPage = 100

// Lister is the slice of the posts repository the service needs.
type Lister interface {
	ListPage(ctx context.Context, page, perPage int) ([]*store.Post, int, error)
}

// Item is the client-facing shape of a post.
type Item struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Text      string     `json:"text"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Meta describes where a page sits in the full listing. PrevPage and
// NextPage are null at the edges.
type Meta struct {
	Page        int  `json:"page"`
	ItemPerPage int  `json:"itemPerPage"`
	TotalItems  int  `json:"totalItems"`
	IsFirstPage bool `json:"isFirstPage"`
	IsLastPage  bool `json:"isLastPage"`
	PrevPage    *int `json:"prevPage"`
	NextPage    *int `json:"nextPage"`
}

// Page is one page of posts plus its pagination meta.
type Page struct {
	Items []Item `json:"items"`
	Meta  Meta   `json:"meta"`
}

// Service lists posts.
type Service struct {
	posts  Lister
	logger auth.Logger
}

// NewService builds a posts service.
func NewService(posts Lister) *Service {
	return &Service{
		posts:  posts,
		logger: auth.NewDefaultLogger("POSTS"),
	}
}

// WithLogger replaces the service logger.
func (s *Service) WithLogger(logger auth.Logger) *Service {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// List returns one page of posts in insertion order. Out-of-range inputs are
// clamped rather than rejected.
func (s *Service) List(ctx context.Context, page, itemPerPage int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if itemPerPage < 1 {
		itemPerPage = DefaultItemPerPage
	}
	if itemPerPage > MaxItemPerPage {
		itemPerPage = MaxItemPerPage
	}

	records, total, err := s.posts.ListPage(ctx, page, itemPerPage)
	if err != nil {
		s.logger.Error("posts listing failed", "page", page, "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list posts")
	}

	items := make([]Item, 0, len(records))
	for _, record := range records {
		items = append(items, Item{
			ID:        record.ID,
			Title:     record.Title,
			Text:      record.Text,
			CreatedAt: record.CreatedAt,
		})
	}

	return &Page{
		Items: items,
		Meta:  NewMeta(page, itemPerPage, total),
	}, nil
}

// NewMeta computes pagination metadata for one page of a listing of total
// rows.
func NewMeta(page, itemPerPage, total int) Meta {
	lastPage := (total + itemPerPage - 1) / itemPerPage
	if lastPage < 1 {
		lastPage = 1
	}

	meta := Meta{
		Page:        page,
		ItemPerPage: itemPerPage,
		TotalItems:  total,
		IsFirstPage: page <= 1,
		IsLastPage:  page >= lastPage,
	}

	if !meta.IsFirstPage {
		prev := page - 1
		meta.PrevPage = &prev
	}
	if !meta.IsLastPage {
		next := page + 1
		meta.NextPage = &next
	}

	return meta
}

package bunstore

import (
	"context"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// contentItem is one stored document. Collection is the same name the
// filesystem backend uses for its directories, so trashed articles live in
// the "trash" collection.
type contentItem struct {
	bun.BaseModel `bun:"table:content_items,alias:ci"`

	ID         uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Collection string    `bun:"collection,notnull,unique:content_items_collection_slug" json:"collection"`
	Slug       string    `bun:"slug,notnull,unique:content_items_collection_slug" json:"slug"`
	Date       string    `bun:"date" json:"date,omitempty"`
	Status     string    `bun:"status" json:"status,omitempty"`
	Document   string    `bun:"document,notnull" json:"document"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

func newItemRepository(db *bun.DB) repository.Repository[*contentItem] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*contentItem]{
		NewRecord: func() *contentItem { return &contentItem{} },
		GetID: func(item *contentItem) uuid.UUID {
			return item.ID
		},
		SetID: func(item *contentItem, id uuid.UUID) {
			item.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(item *contentItem) string {
			return item.Slug
		},
	})
}

// CreateSchema creates the content_items table when it does not exist.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().Model((*contentItem)(nil)).IfNotExists().Exec(ctx)
	return err
}

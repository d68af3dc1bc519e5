package service

import (
	"context"

	"caseguard/internal/model"
)

type principalReader interface {
	FindByID(ctx context.Context, id int64) (model.Principal, error)
}

// PrincipalStore is the persistence surface the auth and user services consume.
type PrincipalStore interface {
	principalReader
	FindByEmail(ctx context.Context, email string) (model.Principal, error)
	Create(ctx context.Context, p model.Principal) (model.Principal, error)
	Update(ctx context.Context, id int64, patch model.PrincipalPatch) (model.Principal, error)
	IncrementTokenVersion(ctx context.Context, id int64) (int, error)
	List(ctx context.Context) ([]model.Principal, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id int64) error
}

type GrantStore interface {
	FindCollectionGrant(ctx context.Context, userID int64, collectionID int64) (*model.CollectionGrant, error)
	FindItemGrant(ctx context.Context, userID int64, itemID int64) (*model.ItemGrant, error)
	UpsertCollectionGrant(ctx context.Context, grant model.CollectionGrant) (*model.CollectionGrant, model.CollectionGrant, error)
	UpsertItemGrant(ctx context.Context, grant model.ItemGrant) (*model.ItemGrant, model.ItemGrant, error)
	DeleteCollectionGrant(ctx context.Context, userID int64, collectionID int64) (model.CollectionGrant, error)
	DeleteItemGrant(ctx context.Context, userID int64, itemID int64) (model.ItemGrant, error)
	ListForUser(ctx context.Context, userID int64) (model.GrantSet, error)
}

type ResourceStore interface {
	CreateCollection(ctx context.Context, name string, createdBy int64) (model.Collection, error)
	FindCollection(ctx context.Context, id int64) (model.Collection, error)
	CreateItem(ctx context.Context, item model.Item) (model.Item, error)
	FindItem(ctx context.Context, id int64) (model.Item, error)
	UpdateItemTitle(ctx context.Context, id int64, title string) (model.Item, error)
	DeleteItem(ctx context.Context, id int64) error
}

// AuditSink appends activity entries. Implementations must not block or fail the caller.
type AuditSink interface {
	Append(actorID int64, action string, detail model.AuditDetail)
}

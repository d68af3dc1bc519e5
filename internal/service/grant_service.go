package service

import (
	"context"
	"errors"

	"caseguard/internal/model"
	"caseguard/pkg/apierror"
)

// GrantService administers the two grant tiers. Callers are administrators; the router
// enforces that before any method here runs.
type GrantService struct {
	grants     GrantStore
	principals principalReader
	resources  ResourceStore
	audit      AuditSink
}

func NewGrantService(grants GrantStore, principals principalReader, resources ResourceStore, audit AuditSink) *GrantService {
	return &GrantService{grants: grants, principals: principals, resources: resources, audit: audit}
}

func (s *GrantService) ListForUser(ctx context.Context, userID int64) (model.GrantSet, error) {
	if _, err := s.principals.FindByID(ctx, userID); err != nil {
		return model.GrantSet{}, err
	}
	return s.grants.ListForUser(ctx, userID)
}

func (s *GrantService) SetCollectionGrant(ctx context.Context, actorID int64, userID int64, collectionID int64, req model.GrantRequest) (model.CollectionGrant, error) {
	if _, err := s.principals.FindByID(ctx, userID); err != nil {
		return model.CollectionGrant{}, err
	}
	if _, err := s.resources.FindCollection(ctx, collectionID); err != nil {
		return model.CollectionGrant{}, err
	}

	before, after, err := s.grants.UpsertCollectionGrant(ctx, model.CollectionGrant{
		UserID:       userID,
		CollectionID: collectionID,
		Capabilities: model.Capabilities(req),
	})
	if err != nil {
		return model.CollectionGrant{}, err
	}

	s.audit.Append(actorID, model.ActionCollectionGrantSet, model.AuditDetail{
		Category:    model.CategoryPermission,
		TargetID:    model.Int64Ptr(userID),
		Description: "collection grant set",
		Metadata: map[string]any{
			"collectionId": collectionID,
			"before":       before.Snapshot(),
			"after":        after.Capabilities,
		},
	})
	return after, nil
}

func (s *GrantService) RevokeCollectionGrant(ctx context.Context, actorID int64, userID int64, collectionID int64) error {
	removed, err := s.grants.DeleteCollectionGrant(ctx, userID, collectionID)
	if errors.Is(err, model.ErrGrantNotFound) {
		return apierror.NotFound("collection grant not found", map[string]any{"userId": userID, "collectionId": collectionID})
	}
	if err != nil {
		return err
	}

	s.audit.Append(actorID, model.ActionCollectionGrantRevoke, model.AuditDetail{
		Category:    model.CategoryPermission,
		TargetID:    model.Int64Ptr(userID),
		Description: "collection grant revoked",
		Metadata:    map[string]any{"collectionId": collectionID, "before": removed.Capabilities},
	})
	return nil
}

// SetItemGrant stores an item grant. The collection id is taken from the item itself.
// The grant only takes effect while the user also holds canView on that collection.
func (s *GrantService) SetItemGrant(ctx context.Context, actorID int64, userID int64, itemID int64, req model.GrantRequest) (model.ItemGrant, error) {
	if _, err := s.principals.FindByID(ctx, userID); err != nil {
		return model.ItemGrant{}, err
	}
	item, err := s.resources.FindItem(ctx, itemID)
	if err != nil {
		return model.ItemGrant{}, err
	}

	before, after, err := s.grants.UpsertItemGrant(ctx, model.ItemGrant{
		UserID:       userID,
		ItemID:       itemID,
		CollectionID: item.CollectionID,
		Capabilities: model.Capabilities(req),
	})
	if err != nil {
		return model.ItemGrant{}, err
	}

	s.audit.Append(actorID, model.ActionItemGrantSet, model.AuditDetail{
		Category:    model.CategoryPermission,
		TargetID:    model.Int64Ptr(userID),
		Description: "item grant set",
		Metadata: map[string]any{
			"itemId":       itemID,
			"collectionId": item.CollectionID,
			"before":       before.Snapshot(),
			"after":        after.Capabilities,
		},
	})
	return after, nil
}

func (s *GrantService) RevokeItemGrant(ctx context.Context, actorID int64, userID int64, itemID int64) error {
	removed, err := s.grants.DeleteItemGrant(ctx, userID, itemID)
	if errors.Is(err, model.ErrGrantNotFound) {
		return apierror.NotFound("item grant not found", map[string]any{"userId": userID, "itemId": itemID})
	}
	if err != nil {
		return err
	}

	s.audit.Append(actorID, model.ActionItemGrantRevoke, model.AuditDetail{
		Category:    model.CategoryPermission,
		TargetID:    model.Int64Ptr(userID),
		Description: "item grant revoked",
		Metadata:    map[string]any{"itemId": itemID, "collectionId": removed.CollectionID, "before": removed.Capabilities},
	})
	return nil
}

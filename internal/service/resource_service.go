package service

import (
	"context"
	"strings"

	"caseguard/internal/model"
	"caseguard/internal/util"
	"caseguard/pkg/apierror"
)

const maxTitleLength = 255

// ResourceService manages collections and their items. Permission checks happen in the
// router before these methods are reached.
type ResourceService struct {
	resources ResourceStore
	audit     AuditSink
}

func NewResourceService(resources ResourceStore, audit AuditSink) *ResourceService {
	return &ResourceService{resources: resources, audit: audit}
}

func (s *ResourceService) CreateCollection(ctx context.Context, actorID int64, req model.CreateCollectionRequest) (model.Collection, error) {
	name, ok := util.CleanLabel(req.Name, maxTitleLength)
	if !ok {
		return model.Collection{}, apierror.Validation("collection name is required", map[string]any{"field": "name", "maxLength": maxTitleLength})
	}

	created, err := s.resources.CreateCollection(ctx, name, actorID)
	if err != nil {
		return model.Collection{}, err
	}

	s.audit.Append(actorID, model.ActionCollectionCreated, model.AuditDetail{
		Category:    model.CategoryResource,
		TargetID:    model.Int64Ptr(created.ID),
		Description: "collection created",
		Metadata:    map[string]any{"name": created.Name},
	})
	return created, nil
}

func (s *ResourceService) GetCollection(ctx context.Context, id int64) (model.Collection, error) {
	return s.resources.FindCollection(ctx, id)
}

// CreateItem records actorID as the item's creator, which later grants ownership rights.
func (s *ResourceService) CreateItem(ctx context.Context, actorID int64, collectionID int64, req model.CreateItemRequest) (model.Item, error) {
	kind := strings.ToLower(strings.TrimSpace(req.Kind))
	if _, ok := model.ItemKinds[kind]; !ok {
		return model.Item{}, apierror.Validation("invalid item kind", map[string]any{"field": "kind", "value": req.Kind})
	}
	title, err := validTitle(req.Title)
	if err != nil {
		return model.Item{}, err
	}

	created, err := s.resources.CreateItem(ctx, model.Item{
		CollectionID: collectionID,
		Kind:         kind,
		Title:        title,
		CreatedBy:    actorID,
	})
	if err != nil {
		return model.Item{}, err
	}

	s.audit.Append(actorID, model.ActionItemCreated, model.AuditDetail{
		Category:    model.CategoryResource,
		TargetID:    model.Int64Ptr(created.ID),
		Description: "item created",
		Metadata:    map[string]any{"collectionId": collectionID, "kind": kind},
	})
	return created, nil
}

// GetItem returns the item only when it belongs to collectionID.
func (s *ResourceService) GetItem(ctx context.Context, collectionID int64, itemID int64) (model.Item, error) {
	item, err := s.resources.FindItem(ctx, itemID)
	if err != nil {
		return model.Item{}, err
	}
	if item.CollectionID != collectionID {
		return model.Item{}, model.ErrItemNotFound
	}
	return item, nil
}

func (s *ResourceService) UpdateItem(ctx context.Context, actorID int64, collectionID int64, itemID int64, req model.UpdateItemRequest) (model.Item, error) {
	title, err := validTitle(req.Title)
	if err != nil {
		return model.Item{}, err
	}

	before, err := s.GetItem(ctx, collectionID, itemID)
	if err != nil {
		return model.Item{}, err
	}

	after, err := s.resources.UpdateItemTitle(ctx, itemID, title)
	if err != nil {
		return model.Item{}, err
	}

	s.audit.Append(actorID, model.ActionItemUpdated, model.AuditDetail{
		Category:    model.CategoryResource,
		TargetID:    model.Int64Ptr(itemID),
		Description: "item updated",
		Metadata:    map[string]any{"before": before.Title, "after": after.Title},
	})
	return after, nil
}

func (s *ResourceService) DeleteItem(ctx context.Context, actorID int64, collectionID int64, itemID int64) error {
	item, err := s.GetItem(ctx, collectionID, itemID)
	if err != nil {
		return err
	}

	if err := s.resources.DeleteItem(ctx, itemID); err != nil {
		return err
	}

	s.audit.Append(actorID, model.ActionItemDeleted, model.AuditDetail{
		Category:    model.CategoryResource,
		TargetID:    model.Int64Ptr(itemID),
		Description: "item deleted",
		Metadata:    map[string]any{"collectionId": collectionID, "title": item.Title},
	})
	return nil
}

func validTitle(raw string) (string, error) {
	title, ok := util.CleanLabel(raw, maxTitleLength)
	if !ok {
		return "", apierror.Validation("title is required", map[string]any{"field": "title", "maxLength": maxTitleLength})
	}
	return title, nil
}

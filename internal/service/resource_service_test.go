package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"caseguard/internal/model"
	"caseguard/pkg/apierror"
)

func TestResourceLifecycle(t *testing.T) {
	t.Parallel()

	resources := newMemResources()
	audit := &recordingAudit{}
	svc := NewResourceService(resources, audit)
	const actor = int64(3)

	_, err := svc.CreateCollection(context.Background(), actor, model.CreateCollectionRequest{Name: "   "})
	require.Equal(t, apierror.CodeValidation, apierror.CodeOf(err))

	canton, err := svc.CreateCollection(context.Background(), actor, model.CreateCollectionRequest{Name: " Geneva "})
	require.NoError(t, err)
	require.Equal(t, "Geneva", canton.Name)

	_, err = svc.CreateItem(context.Background(), actor, canton.ID, model.CreateItemRequest{Kind: "spaceship", Title: "x"})
	require.Equal(t, apierror.CodeValidation, apierror.CodeOf(err))

	_, err = svc.CreateItem(context.Background(), actor, 9999, model.CreateItemRequest{Kind: "person", Title: "Hans Muster"})
	require.ErrorIs(t, err, model.ErrCollectionMissing)

	person, err := svc.CreateItem(context.Background(), actor, canton.ID, model.CreateItemRequest{Kind: "Person", Title: "Hans Muster"})
	require.NoError(t, err)
	require.Equal(t, actor, person.CreatedBy)
	require.Equal(t, "person", person.Kind)

	other, err := svc.CreateCollection(context.Background(), actor, model.CreateCollectionRequest{Name: "Vaud"})
	require.NoError(t, err)
	_, err = svc.GetItem(context.Background(), other.ID, person.ID)
	require.ErrorIs(t, err, model.ErrItemNotFound)

	updated, err := svc.UpdateItem(context.Background(), actor, canton.ID, person.ID, model.UpdateItemRequest{Title: "Hans Muster-Meier"})
	require.NoError(t, err)
	require.Equal(t, "Hans Muster-Meier", updated.Title)
	require.Equal(t, map[string]any{"before": "Hans Muster", "after": "Hans Muster-Meier"}, audit.last().detail.Metadata)

	require.NoError(t, svc.DeleteItem(context.Background(), actor, canton.ID, person.ID))
	_, err = svc.GetItem(context.Background(), canton.ID, person.ID)
	require.ErrorIs(t, err, model.ErrItemNotFound)

	require.Equal(t, []string{
		model.ActionCollectionCreated,
		model.ActionItemCreated,
		model.ActionCollectionCreated,
		model.ActionItemUpdated,
		model.ActionItemDeleted,
	}, audit.actions())
}

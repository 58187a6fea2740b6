package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Behnamfe76/contacts-directory/internal/events"
	"github.com/Behnamfe76/contacts-directory/internal/repository"
	"github.com/Behnamfe76/contacts-directory/internal/testutil"
)

func TestContactService_CRUD(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	var seen []events.EventType
	for _, et := range []events.EventType{events.EventContactCreated, events.EventContactUpdated, events.EventContactDeleted} {
		dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			seen = append(seen, e.Type)
			return nil
		})
	}

	svc := NewContactService(testutil.NewContactStore(), dispatcher, nil)
	ctx := context.Background()

	ana, err := svc.Create(ctx, alice, ContactInput{Name: "Ana", DDD: "11", Phone: "987654321", Email: "ana@example.com"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, alice, ContactInput{Name: "Bruno", DDD: "21", Phone: "87654321", Email: "bruno@example.com"})
	require.NoError(t, err)

	list, err := svc.List(ctx, repository.ContactFilter{DDD: ptr("11")})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ana", list[0].Name)

	updated, err := svc.Update(ctx, alice, ana.ID, ContactInput{Name: "Ana Maria", DDD: "11", Phone: "987654321", Email: "ana@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", updated.Name)
	assert.Equal(t, ana.CreatedAt, updated.CreatedAt)

	_, err = svc.Update(ctx, alice, 999, ContactInput{Name: "x", DDD: "11", Phone: "12345678", Email: "x@example.com"})
	assert.Equal(t, "NOT_FOUND", errCode(err))

	deleted, err := svc.Delete(ctx, alice, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", deleted.Name)

	_, err = svc.Get(ctx, ana.ID)
	assert.Equal(t, "NOT_FOUND", errCode(err))
	_, err = svc.Delete(ctx, alice, ana.ID)
	assert.Equal(t, "NOT_FOUND", errCode(err))

	assert.Equal(t, []events.EventType{
		events.EventContactCreated,
		events.EventContactCreated,
		events.EventContactUpdated,
		events.EventContactDeleted,
	}, seen)
}

package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_RunsAllHandlersAndJoinsErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	var seen []string

	d.Subscribe(EventPartCreated, func(context.Context, Event) error {
		seen = append(seen, "first")
		return errors.New("cache down")
	})
	d.Subscribe(EventPartCreated, func(_ context.Context, e Event) error {
		seen = append(seen, "second:"+string(e.Type))
		return nil
	})
	d.Subscribe(EventPartDeleted, func(context.Context, Event) error {
		seen = append(seen, "other")
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventPartCreated, 7, Actor{Username: "admin"}, PartPayload{TrtCode: "TRT-1"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache down")
	assert.Equal(t, []string{"first", "second:part_created"}, seen)
}

func TestSubscribeAll(t *testing.T) {
	d := NewInMemoryDispatcher()
	count := 0
	SubscribeAll(d, CatalogEventTypes, func(context.Context, Event) error {
		count++
		return nil
	})

	for _, typ := range CatalogEventTypes {
		require.NoError(t, d.Publish(context.Background(), NewEvent(typ, 1, Actor{}, nil)))
	}
	assert.Equal(t, len(CatalogEventTypes), count)
}

func TestNewEvent(t *testing.T) {
	a := NewEvent(EventCategoryUpdated, 3, Actor{UserID: 1}, CategoryPayload{Name: "Brakes"})
	b := NewEvent(EventCategoryUpdated, 3, Actor{UserID: 1}, nil)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, int64(3), a.EntityID)
	assert.False(t, a.Timestamp.IsZero())
}

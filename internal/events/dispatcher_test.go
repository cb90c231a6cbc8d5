package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_DeliversToAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")

	var seen []string
	d.Subscribe(EventUserLoggedIn, func(_ context.Context, e Event) error {
		seen = append(seen, "first:"+e.PrincipalID)
		return boom
	})
	d.Subscribe(EventUserLoggedIn, func(_ context.Context, e Event) error {
		seen = append(seen, "second:"+e.PrincipalID)
		return nil
	})
	d.Subscribe(EventGuestMerged, func(context.Context, Event) error {
		t.Fatal("unrelated handler invoked")
		return nil
	})

	err := d.Publish(context.Background(), New(EventUserLoggedIn, "u-1", nil))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first:u-1", "second:u-1"}, seen)
}

func TestNew_StampsEvent(t *testing.T) {
	e := New(EventTokensRotated, "u-1", nil)
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())
	assert.Equal(t, EventTokensRotated, e.Type)
}

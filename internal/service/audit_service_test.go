package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rishabhsingh-git/photography-website-sub000/internal/events"
)

func TestAuditService_LogsAuthEvents(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, zap.New(core)).RegisterHandlers()

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventGuestMerged, "u-1", events.GuestMergedPayload{
		GuestID:    "g-1",
		Reparented: 2,
	})))
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventTokensRotated, "u-1", nil)))

	merged := logs.FilterMessage(string(events.EventGuestMerged)).All()
	require.Len(t, merged, 1)
	assert.Equal(t, zapcore.InfoLevel, merged[0].Level)
	assert.Equal(t, "u-1", merged[0].ContextMap()["principal_id"])

	rotated := logs.FilterMessage(string(events.EventTokensRotated)).All()
	require.Len(t, rotated, 1)
	assert.Equal(t, zapcore.DebugLevel, rotated[0].Level)
}

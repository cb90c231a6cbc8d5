package observability

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMetrics_SnapshotIsACopy(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/auth/login", "POST", 200, 5*time.Millisecond)
	m.RecordRequest("/auth/login", "POST", 200, 5*time.Millisecond)
	m.RecordError("/auth/login", "POST", "INVALID_CREDENTIALS")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/auth/login|POST|200"])
	assert.Equal(t, 10*time.Millisecond, snap.Latency["/auth/login|POST|200"])
	assert.Equal(t, int64(1), snap.Errors["/auth/login|POST|INVALID_CREDENTIALS"])

	snap.Requests["/auth/login|POST|200"] = 99
	assert.Equal(t, int64(2), m.Snapshot().Requests["/auth/login|POST|200"])

	var nilMetrics *Metrics
	nilMetrics.RecordRequest("/", "GET", 200, 0)
	assert.Empty(t, nilMetrics.Snapshot().Requests)
}

func TestRequestLogger_RecordsRoutePattern(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), m))
	app.Delete("/cart/items/:serviceID", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("DELETE", "/cart/items/S1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, int64(1), m.Snapshot().Requests["/cart/items/:serviceID|DELETE|204"])
}

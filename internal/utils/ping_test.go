package utils

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serve starts app on a free local port and returns its base URL
func serve(t *testing.T, app *fiber.App) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.ShutdownWithTimeout(time.Second) })
	return "http://" + ln.Addr().String()
}

func TestProbeHTTP(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/locked", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusForbidden) })
	app.Get("/down", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusServiceUnavailable) })
	base := serve(t, app)

	assert.NoError(t, ProbeHTTP(base+"/ok", time.Second))
	assert.NoError(t, ProbeHTTP(base+"/locked", time.Second))
	assert.NoError(t, ProbeHTTP(base+"/missing", time.Second))
	assert.ErrorContains(t, ProbeHTTP(base+"/down", time.Second), "answered 503")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	closed := "http://" + ln.Addr().String()
	require.NoError(t, ln.Close())
	assert.ErrorContains(t, ProbeHTTP(closed, time.Second), "failed to reach")
}

func TestPingAuthorizer(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(func(c *fiber.Ctx) error {
		mu.Lock()
		paths = append(paths, c.Path())
		mu.Unlock()
		return c.SendString("OK")
	})
	base := serve(t, app)

	require.NoError(t, PingAuthorizer(base+"/"))
	mu.Lock()
	assert.Equal(t, []string{"/health"}, paths)
	mu.Unlock()

	assert.Error(t, PingAuthorizer(""))
	assert.NoError(t, PingStorage(base))
}

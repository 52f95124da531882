package web

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// EventStream exposes the in-process event bus as server-sent events. Each
// subscriber gets its own channel; a disconnecting client only cancels its
// own subscription.
func EventStream(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")

		events, cancel := a.Bus.Subscribe()

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			defer cancel()
			for event := range events {
				data, err := json.Marshal(event.Payload)
				if err != nil {
					slog.Warn("Failed to encode stream event",
						slog.String("event", event.Name),
						slog.Any("error", err))
					continue
				}
				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, data); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}))
		return nil
	}
}

// Package handlers translates wire messages into domain service calls, one
// handler group per entity family. Every operation follows the same contract:
// bind and validate the payload (failures are logged and produce no reply),
// call the service, and encode the response envelope.
package handlers

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/fieldtrack/assettrack/internal/core/ports"
	"github.com/fieldtrack/assettrack/internal/transport"
	"github.com/fieldtrack/assettrack/internal/transport/dispatch"
)

// wireDate is the date-only format orders use on the wire.
const wireDate = "2006-01-02"

var validate = validator.New()

// bind unmarshals and validates an inbound payload.
func bind(env transport.Envelope, dst any) error {
	if err := env.Bind(dst); err != nil {
		return err
	}
	return validate.Struct(dst)
}

// RegisterAll wires every handler group into the dispatcher's type table.
func RegisterAll(
	d *dispatch.Dispatcher,
	orders ports.OrderService,
	items ports.ItemService,
	orderItems ports.OrderItemService,
	itemReads ports.ItemReadService,
	people ports.PersonService,
	users ports.UserService,
	log zerolog.Logger,
) {
	NewOrderHandler(orders, log).Register(d)
	NewItemHandler(items, log).Register(d)
	NewOrderItemHandler(orderItems, items, log).Register(d)
	NewItemReadHandler(itemReads, log).Register(d)
	NewPersonHandler(people, log).Register(d)
	NewUserHandler(users, log).Register(d)
}

// parseDate parses a yyyy-mm-dd wire date, returning nil for empty or
// unparseable input.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(wireDate, s)
	if err != nil {
		return nil
	}
	return &t
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(wireDate)
}

// parseTimestamp parses a scan timestamp, accepting RFC 3339 with or without
// sub-second precision and a bare local date-time. The zero time is returned
// when nothing matches; services substitute the current time.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

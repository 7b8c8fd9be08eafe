// Package broker embeds an MQTT broker for handheld scanners. Devices on the
// warehouse network publish scans to a well-known topic; the bridge wraps each
// publication as an inbound message and feeds it to the dispatcher, so device
// traffic and client traffic share one ordered pipeline.
package broker

import (
	"fmt"

	mqtt "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
	"github.com/rs/zerolog"
)

// Config captures the embedded broker settings.
type Config struct {
	// Addr is the TCP address the broker listens on, e.g. ":1883".
	Addr string
	// ScanTopic is the topic filter scanner publications arrive on.
	ScanTopic string
}

// Broker wraps the embedded MQTT server.
type Broker struct {
	server *mqtt.Server
	cfg    Config
	log    zerolog.Logger
}

// New builds the embedded broker. Scanners are trusted by network placement,
// so the broker accepts all connections; the TLS and credential story lives
// at the network boundary, not here.
func New(cfg Config, log zerolog.Logger) (*Broker, error) {
	server := mqtt.New(&mqtt.Options{InlineClient: true})
	if err := server.AddHook(new(auth.AllowHook), nil); err != nil {
		return nil, fmt.Errorf("broker auth hook: %w", err)
	}

	tcp := listeners.NewTCP(listeners.Config{ID: "scanners", Address: cfg.Addr})
	if err := server.AddListener(tcp); err != nil {
		return nil, fmt.Errorf("broker listener %s: %w", cfg.Addr, err)
	}

	return &Broker{server: server, cfg: cfg, log: log}, nil
}

// Serve runs the broker until Close. It blocks.
func (b *Broker) Serve() error {
	b.log.Info().Str("addr", b.cfg.Addr).Str("topic", b.cfg.ScanTopic).Msg("mqtt broker listening")
	return b.server.Serve()
}

// Close shuts the broker down, disconnecting all clients.
func (b *Broker) Close() error {
	return b.server.Close()
}

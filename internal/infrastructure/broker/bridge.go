package broker

import (
	"encoding/json"
	"fmt"
	"strings"

	mqtt "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/packets"
	"github.com/rs/zerolog"

	"github.com/fieldtrack/assettrack/internal/api/metrics"
	"github.com/fieldtrack/assettrack/internal/transport"
	"github.com/fieldtrack/assettrack/internal/transport/dispatch"
)

// scanPayload is what well-behaved scanners publish. Older firmware publishes
// the bare tag id instead; the bridge accepts both.
type scanPayload struct {
	TagID    string `json:"tagId"`
	ReadTime string `json:"readTime"`
}

// Bridge forwards scanner publications into the dispatcher. Scans become
// fire-and-forget jobs: the dispatcher applies the same debounce and
// unknown-tag rules as client-submitted reads, and no reply goes back to the
// device.
type Bridge struct {
	dispatcher *dispatch.Dispatcher
	log        zerolog.Logger
}

func NewBridge(dispatcher *dispatch.Dispatcher, log zerolog.Logger) *Bridge {
	return &Bridge{dispatcher: dispatcher, log: log}
}

// Attach subscribes the bridge to the broker's scan topic. Call before Serve.
func (br *Bridge) Attach(b *Broker) error {
	if err := b.server.Subscribe(b.cfg.ScanTopic, 1, br.onScan); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.cfg.ScanTopic, err)
	}
	return nil
}

func (br *Bridge) onScan(cl *mqtt.Client, _ packets.Subscription, pk packets.Packet) {
	payload := normalizeScan(pk.Payload)
	if payload == nil {
		br.log.Warn().Str("client", cl.ID).Str("topic", pk.TopicName).Msg("unusable scan publication")
		return
	}

	raw, err := transport.Encode(transport.BrokerItemReadCreate, payload)
	if err != nil {
		br.log.Error().Err(err).Msg("encode scan")
		return
	}

	metrics.BrokerPublicationsTotal.Inc()
	br.log.Debug().Str("client", cl.ID).Str("tag_id", payload.TagID).Msg("scan bridged")
	br.dispatcher.Enqueue(raw, nil)
}

// normalizeScan turns a publication body into a scan payload. JSON objects
// pass through; anything else is taken as a bare tag id with no timestamp.
func normalizeScan(body []byte) *scanPayload {
	var p scanPayload
	if err := json.Unmarshal(body, &p); err == nil && p.TagID != "" {
		return &p
	}

	tag := strings.TrimSpace(string(body))
	if tag == "" || strings.ContainsAny(tag, "{}\"") {
		return nil
	}
	return &scanPayload{TagID: tag}
}

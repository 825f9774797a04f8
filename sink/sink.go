// Package sink delivers the poller's decoded events to consumers
// outside the process.
package sink

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/blockberries/chainxt/poller"
)

// Publisher sends a message on a subject. *nats.Conn implements it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Message is the JSON document published for each matched event.
type Message struct {
	Block     uint32 `json:"block"`
	BlockHash string `json:"block_hash"`
	Entry     int    `json:"entry"`
	Module    string `json:"module"`
	Event     string `json:"event"`
	Payload   string `json:"payload"`
	Fields    any    `json:"fields,omitempty"`
	Error     string `json:"error,omitempty"`
}

// NATS publishes every match to <prefix>.<module>.<event>.
type NATS struct {
	pub    Publisher
	prefix string
	log    *zap.Logger
	closer func()
}

// NewNATS publishes through pub. A nil logger discards.
func NewNATS(pub Publisher, prefix string, log *zap.Logger) *NATS {
	if log == nil {
		log = zap.NewNop()
	}
	return &NATS{pub: pub, prefix: prefix, log: log}
}

// Connect dials the NATS server at url and publishes through it.
func Connect(url, prefix string, log *zap.Logger) (*NATS, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	nc, err := nats.Connect(url, nats.RetryOnFailedConnect(true), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("sink: connect to NATS at %s: %w", url, err)
	}
	s := NewNATS(nc, prefix, log)
	s.closer = nc.Close
	return s, nil
}

// Subject returns the subject events of module.event are published on.
func (s *NATS) Subject(module, event string) string {
	return s.prefix + "." + module + "." + event
}

// Handle publishes every match of one block in log order. It is a
// poller.Handler. Matches that failed to decode are published with
// their error so downstream consumers see schema drift too.
func (s *NATS) Handle(_ context.Context, ev poller.BlockEvents) error {
	var blockHash string
	if ev.Cursor.Hash != nil {
		blockHash = ev.Cursor.Hash.String()
	}
	for _, m := range ev.Matches {
		desc := m.Raw.Descriptor()
		msg := Message{
			Block:     ev.Cursor.Index,
			BlockHash: blockHash,
			Entry:     m.Index,
			Module:    desc.Module,
			Event:     desc.Event,
			Payload:   "0x" + hex.EncodeToString(m.Raw.Payload),
		}
		if m.Err != nil {
			msg.Error = m.Err.Error()
		} else {
			msg.Fields = m.Event
		}
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("sink: marshal %s: %w", desc, err)
		}
		subject := s.Subject(desc.Module, desc.Event)
		if err := s.pub.Publish(subject, data); err != nil {
			return fmt.Errorf("sink: publish %s at %s: %w", subject, ev.Cursor, err)
		}
		s.log.Debug("published event", zap.String("subject", subject), zap.Stringer("cursor", ev.Cursor))
	}
	return nil
}

// Close closes the connection opened by Connect.
func (s *NATS) Close() error {
	if s.closer != nil {
		s.closer()
	}
	return nil
}

// Log returns a handler that logs each delivered block and match.
func Log(log *zap.Logger) poller.Handler {
	return func(_ context.Context, ev poller.BlockEvents) error {
		log.Info("block",
			zap.Stringer("cursor", ev.Cursor),
			zap.Int("entries", ev.Entries),
			zap.Int("matches", len(ev.Matches)),
			zap.Int("skipped", len(ev.Skipped)),
		)
		for _, m := range ev.Matches {
			if m.Err != nil {
				log.Warn("undecodable event",
					zap.Int("entry", m.Index),
					zap.Stringer("descriptor", m.Raw.Descriptor()),
					zap.Error(m.Err),
				)
				continue
			}
			log.Info("event",
				zap.Int("entry", m.Index),
				zap.Stringer("descriptor", m.Raw.Descriptor()),
				zap.Any("fields", m.Event),
			)
		}
		return nil
	}
}

// Chain runs handlers in order and stops at the first error.
func Chain(handlers ...poller.Handler) poller.Handler {
	return func(ctx context.Context, ev poller.BlockEvents) error {
		for _, h := range handlers {
			if err := h(ctx, ev); err != nil {
				return err
			}
		}
		return nil
	}
}

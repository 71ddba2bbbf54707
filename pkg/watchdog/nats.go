// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and prysm contributors
//
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

const natsFlushTimeout = 5 * time.Second

type publisher interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
}

// NATSReporter publishes cycle reports as JSON.
type NATSReporter struct {
	conn    publisher
	close   func()
	subject string
}

func NewNATSReporter(url, subject string) (*NATSReporter, error) {
	nc, err := nats.Connect(url, nats.Name("license-watchdog"), nats.Timeout(natsFlushTimeout))
	if err != nil {
		return nil, err
	}
	return &NATSReporter{conn: nc, close: nc.Close, subject: subject}, nil
}

func PublishToNATS(conn publisher, report Report, subject string) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	if err := conn.Publish(subject, data); err != nil {
		return err
	}
	// The process exits right after the cycle, so wait for the server.
	return conn.FlushTimeout(natsFlushTimeout)
}

func (r *NATSReporter) Report(_ context.Context, report Report) {
	if err := PublishToNATS(r.conn, report, r.subject); err != nil {
		log.Error().Err(err).Str("subject", r.subject).Msg("error publishing to nats")
		return
	}
	log.Debug().Str("subject", r.subject).Str("cycle_id", report.CycleID).Msg("report published to nats")
}

func (r *NATSReporter) Close() {
	if r.close != nil {
		r.close()
	}
}

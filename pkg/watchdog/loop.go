// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and prysm contributors
//
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cobaltcore-dev/license-watchdog/pkg/splunk"
)

// Client is everything a cycle needs from Splunk.
type Client interface {
	InputClient
	LicenseUsage(ctx context.Context, host string) (splunk.Usage, error)
}

// Reporter receives the report of every finished cycle, successful or not.
type Reporter interface {
	Report(ctx context.Context, report Report)
}

// CycleState is how far a cycle got.
type CycleState string

const (
	StateStart        CycleState = "start"
	StateUsageFetched CycleState = "usage_fetched"
	StateEvaluated    CycleState = "evaluated"
	StateToggling     CycleState = "toggling"
	StateDone         CycleState = "done"
	StateNoActionDone CycleState = "no_action_done"
	StateAborted      CycleState = "aborted"
)

// Report describes one cycle.
type Report struct {
	CycleID         string         `json:"cycle_id"`
	NodeName        string         `json:"node_name,omitempty"`
	LicensingServer string         `json:"licensing_server"`
	StartedAt       time.Time      `json:"started_at"`
	FinishedAt      time.Time      `json:"finished_at"`
	Usage           *UsageSnapshot `json:"usage,omitempty"`
	Decision        Decision       `json:"decision"`
	Reason          Reason         `json:"reason,omitempty"`
	Toggled         int            `json:"inputs_toggled"`
	// LastState is how far the cycle got. On abort it names the step that
	// failed, since State is then always StateAborted.
	LastState CycleState `json:"last_state"`
	// State is the terminal state: StateDone, StateNoActionDone or
	// StateAborted. It equals LastState unless the cycle aborted.
	State CycleState `json:"state"`
	Success   bool       `json:"success"`
	Error     string     `json:"error,omitempty"`
}

// Loop runs control cycles. It keeps no state between cycles.
type Loop struct {
	cfg       WatchdogConfig
	client    Client
	toggler   *Toggler
	reporters []Reporter
	now       func() time.Time
}

func NewLoop(cfg WatchdogConfig, client Client, reporters ...Reporter) *Loop {
	cfg.Inputs = append([]string(nil), cfg.Inputs...)
	return &Loop{
		cfg:       cfg,
		client:    client,
		toggler:   NewToggler(client),
		reporters: reporters,
		now:       time.Now,
	}
}

// RunCycle fetches license usage, decides and applies the decision. Any
// failure aborts the cycle and is returned as is.
func (l *Loop) RunCycle(ctx context.Context) (Report, error) {
	report := l.newReport()
	err := l.runCycle(ctx, &report)
	return l.finish(ctx, report, err)
}

// Force applies decision without looking at license usage.
func (l *Loop) Force(ctx context.Context, decision Decision) (Report, error) {
	report := l.newReport()
	report.Decision = decision
	report.Reason = ReasonForced
	report.LastState = StateEvaluated
	log.Info().Stringer("decision", decision).Msg(ReasonForced.describe())
	err := l.apply(ctx, &report)
	return l.finish(ctx, report, err)
}

func (l *Loop) runCycle(ctx context.Context, report *Report) error {
	usage, err := l.client.LicenseUsage(ctx, l.cfg.LicensingServer)
	if err != nil {
		return fmt.Errorf("getting license data: %w", err)
	}
	snapshot, err := NewUsageSnapshot(usage.Used, usage.Quota)
	if err != nil {
		return err
	}
	report.Usage = &snapshot
	report.LastState = StateUsageFetched

	log.Info().
		Float64("quota_gib", snapshot.Quota).
		Float64("used_gib", snapshot.Used).
		Float64("percent_used", snapshot.PercentUsed).
		Msgf("quota: %0.3f; used: %0.3f (%0.1f%%)", snapshot.Quota, snapshot.Used, snapshot.PercentUsed)

	report.Decision, report.Reason = Evaluate(snapshot, l.cfg.EnableThreshold, l.cfg.DisableThreshold)
	report.LastState = StateEvaluated
	log.Info().
		Stringer("decision", report.Decision).
		Str("reason", string(report.Reason)).
		Msg(report.Reason.describe())

	return l.apply(ctx, report)
}

func (l *Loop) apply(ctx context.Context, report *Report) error {
	var targetDisabled bool
	switch report.Decision {
	case EnableAll:
		targetDisabled = false
	case DisableAll:
		targetDisabled = true
	default:
		report.LastState = StateNoActionDone
		return nil
	}

	report.LastState = StateToggling
	toggled, err := l.toggler.Toggle(ctx, l.cfg.Inputs, targetDisabled)
	report.Toggled = toggled
	if err != nil {
		return err
	}
	report.LastState = StateDone
	log.Info().Int("inputs_toggled", toggled).Int("inputs", len(l.cfg.Inputs)).Msgf("%d of %d inputs %s", toggled, len(l.cfg.Inputs), stateName(targetDisabled))
	return nil
}

func (l *Loop) newReport() Report {
	return Report{
		CycleID:         uuid.NewString(),
		NodeName:        l.cfg.NodeName,
		LicensingServer: l.cfg.LicensingServer,
		StartedAt:       l.now().UTC(),
		LastState:       StateStart,
	}
}

func (l *Loop) finish(ctx context.Context, report Report, err error) (Report, error) {
	report.FinishedAt = l.now().UTC()
	if err != nil {
		report.State = StateAborted
		report.Error = err.Error()
	} else {
		report.State = report.LastState
		report.Success = true
	}

	for _, r := range l.reporters {
		r.Report(ctx, report)
	}
	return report, err
}

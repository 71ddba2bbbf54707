// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and prysm contributors
//
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cobaltcore-dev/license-watchdog/pkg/splunk"
)

func testLoop(client *fakeClient, reporters ...Reporter) *Loop {
	l := NewLoop(WatchdogConfig{
		LicensingServer:  "https://license:8089",
		Inputs:           testInputs,
		EnableThreshold:  30,
		DisableThreshold: 90,
		NodeName:         "node-a",
	}, client, reporters...)
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	return l
}

func TestRunCycleDisablesOverThreshold(t *testing.T) {
	client := newFakeClient(map[string]bool{})
	client.usage = splunk.Usage{Used: 91, Quota: 100, Pools: 1}
	rec := &recordingReporter{}

	report, err := testLoop(client, rec).RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DisableAll, report.Decision)
	assert.Equal(t, ReasonOverDisableLevel, report.Reason)
	assert.Equal(t, 3, report.Toggled)
	assert.Equal(t, StateDone, report.State)
	assert.Equal(t, report.State, report.LastState)
	assert.True(t, report.Success)
	require.NotNil(t, report.Usage)
	assert.Equal(t, 91.0, report.Usage.PercentUsed)
	assert.Equal(t, "node-a", report.NodeName)
	_, parseErr := uuid.Parse(report.CycleID)
	assert.NoError(t, parseErr)
	assert.True(t, report.FinishedAt.After(report.StartedAt))

	require.Len(t, rec.reports, 1)
	assert.Equal(t, report, rec.reports[0])
}

func TestRunCycleNoActionAtThreshold(t *testing.T) {
	client := newFakeClient(map[string]bool{})
	client.usage = splunk.Usage{Used: 90, Quota: 100}

	report, err := testLoop(client).RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NoAction, report.Decision)
	assert.Equal(t, StateNoActionDone, report.State)
	assert.Empty(t, client.reads)
	assert.Empty(t, client.writes)
}

func TestRunCycleCatchUpEnables(t *testing.T) {
	client := newFakeClient(map[string]bool{testInputs[0]: true, testInputs[2]: true})
	client.usage = splunk.Usage{Used: 101, Quota: 100}

	report, err := testLoop(client).RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, EnableAll, report.Decision)
	assert.Equal(t, ReasonOverQuota, report.Reason)
	assert.Equal(t, 2, report.Toggled)
	assert.False(t, client.disabled[testInputs[0]])
}

func TestRunCycleZeroQuotaAborts(t *testing.T) {
	client := newFakeClient(map[string]bool{})
	client.usage = splunk.Usage{Used: 10, Quota: 0}
	rec := &recordingReporter{}

	report, err := testLoop(client, rec).RunCycle(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidUsageData)
	assert.Empty(t, client.reads)
	assert.Empty(t, client.writes)
	assert.Equal(t, StateAborted, report.State)
	assert.Equal(t, StateStart, report.LastState)
	assert.False(t, report.Success)
	assert.Nil(t, report.Usage)
	require.Len(t, rec.reports, 1)
	assert.Equal(t, err.Error(), rec.reports[0].Error)
}

func TestRunCycleUsageFetchFailure(t *testing.T) {
	client := newFakeClient(map[string]bool{})
	client.usageErr = &splunk.TransportError{Method: "POST", URL: "https://license:8089/x", Err: errors.New("timeout")}

	_, err := testLoop(client).RunCycle(context.Background())
	assert.ErrorIs(t, err, splunk.ErrTransport)
	assert.Contains(t, err.Error(), "getting license data")
	assert.Empty(t, client.reads)
}

func TestRunCyclePartialToggleIsReported(t *testing.T) {
	client := newFakeClient(map[string]bool{})
	client.usage = splunk.Usage{Used: 95, Quota: 100}
	client.writeErrors[testInputs[1]] = "boom"

	report, err := testLoop(client).RunCycle(context.Background())
	assert.ErrorIs(t, err, ErrRemoteOperation)
	assert.Equal(t, 1, report.Toggled)
	assert.Equal(t, StateToggling, report.LastState)
	assert.Equal(t, StateAborted, report.State)
}

func TestForce(t *testing.T) {
	client := newFakeClient(map[string]bool{})
	client.usageErr = errors.New("must not be called")

	report, err := testLoop(client).Force(context.Background(), DisableAll)
	require.NoError(t, err)
	assert.Equal(t, ReasonForced, report.Reason)
	assert.Equal(t, 3, report.Toggled)
	assert.Nil(t, report.Usage)

	report, err = testLoop(client).Force(context.Background(), EnableAll)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Toggled)
}

func TestNewLoopCopiesInputs(t *testing.T) {
	inputs := []string{"a", "b"}
	l := NewLoop(WatchdogConfig{Inputs: inputs}, newFakeClient(map[string]bool{}))
	inputs[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, l.cfg.Inputs)
}

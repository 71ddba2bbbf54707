// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and prysm contributors
//
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"context"

	"github.com/cobaltcore-dev/license-watchdog/pkg/splunk"
)

// fakeClient keeps input state in memory, like a Splunk server would.
type fakeClient struct {
	usage    splunk.Usage
	usageErr error

	disabled map[string]bool
	// writeErrors maps an input to the ERROR message its next write returns.
	writeErrors map[string]string
	// stuck inputs accept writes without changing state.
	stuck    map[string]bool
	readErrs map[string]error

	reads  []string
	writes []string
}

func newFakeClient(disabled map[string]bool) *fakeClient {
	return &fakeClient{
		disabled:    disabled,
		writeErrors: map[string]string{},
		stuck:       map[string]bool{},
		readErrs:    map[string]error{},
	}
}

func (f *fakeClient) LicenseUsage(_ context.Context, _ string) (splunk.Usage, error) {
	return f.usage, f.usageErr
}

func (f *fakeClient) InputState(_ context.Context, input string) (splunk.InputState, error) {
	f.reads = append(f.reads, input)
	if err := f.readErrs[input]; err != nil {
		return splunk.InputState{}, err
	}
	return splunk.InputState{URL: input, Disabled: f.disabled[input]}, nil
}

func (f *fakeClient) SetInputState(_ context.Context, input string, disabled bool) (splunk.WriteResult, error) {
	f.writes = append(f.writes, input)
	if text, ok := f.writeErrors[input]; ok {
		return splunk.WriteResult{Messages: []splunk.Message{{Type: "ERROR", Text: text}}}, nil
	}
	if !f.stuck[input] {
		f.disabled[input] = disabled
	}
	return splunk.WriteResult{
		State:    splunk.InputState{URL: input, Disabled: f.disabled[input]},
		Messages: []splunk.Message{},
	}, nil
}

type recordingReporter struct {
	reports []Report
}

func (r *recordingReporter) Report(_ context.Context, report Report) {
	r.reports = append(r.reports, report)
}

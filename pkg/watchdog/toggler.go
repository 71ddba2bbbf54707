// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and prysm contributors
//
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/cobaltcore-dev/license-watchdog/pkg/splunk"
)

// InputClient reads and changes the state of data inputs.
type InputClient interface {
	InputState(ctx context.Context, inputURL string) (splunk.InputState, error)
	SetInputState(ctx context.Context, inputURL string, disabled bool) (splunk.WriteResult, error)
}

// Toggler moves inputs into a target state, one at a time.
type Toggler struct {
	client InputClient
}

func NewToggler(client InputClient) *Toggler {
	return &Toggler{client: client}
}

// Toggle brings every input to the requested state in order and returns how
// many inputs were changed. The first failure stops the run; inputs changed
// before it stay changed.
func (t *Toggler) Toggle(ctx context.Context, inputs []string, targetDisabled bool) (int, error) {
	action := stateName(targetDisabled)
	toggled := 0

	for _, input := range inputs {
		state, err := t.client.InputState(ctx, input)
		if err != nil {
			return toggled, fmt.Errorf("reading input %s: %w", input, err)
		}
		if state.Disabled == targetDisabled {
			log.Debug().Str("input", input).Msgf("already %s", action)
			continue
		}

		result, err := t.client.SetInputState(ctx, input, targetDisabled)
		if err != nil {
			return toggled, fmt.Errorf("changing input %s: %w", input, err)
		}
		for _, msg := range result.Messages {
			log.Debug().Str("input", input).Str("type", msg.Type).Str("text", msg.Text).Msg("splunk message")
		}
		if msg, ok := result.FirstError(); ok {
			return toggled, &RemoteOperationError{Input: input, Text: msg.Text}
		}
		if result.State.Disabled != targetDisabled {
			return toggled, &VerificationError{Input: input, WantDisabled: targetDisabled}
		}

		toggled++
		// No level, so changes stay visible with --quiet.
		log.Log().Str("input", input).Str("action", action).Msg(action)
	}

	return toggled, nil
}

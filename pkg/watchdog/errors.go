// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and prysm contributors
//
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"fmt"
)

// Error kinds raised by the control loop itself. Transport and data shape
// failures come from the splunk package.
const (
	ErrInvalidUsageData errorKind = "InvalidUsageDataError"
	ErrRemoteOperation  errorKind = "RemoteOperationError"
	ErrVerification     errorKind = "VerificationError"
)

type errorKind string

func (e errorKind) Error() string { return string(e) }

// InvalidUsageDataError is returned for usage figures no decision can be
// derived from.
type InvalidUsageDataError struct {
	Used  float64
	Quota float64
}

func (e *InvalidUsageDataError) Error() string {
	return fmt.Sprintf("invalid license data received: used=%v quota=%v", e.Used, e.Quota)
}

func (e *InvalidUsageDataError) Is(target error) bool { return target == ErrInvalidUsageData }

// RemoteOperationError carries an ERROR message Splunk returned for a write.
type RemoteOperationError struct {
	Input string
	Text  string
}

func (e *RemoteOperationError) Error() string {
	return fmt.Sprintf("error toggling input state: %s: %s", e.Input, e.Text)
}

func (e *RemoteOperationError) Is(target error) bool { return target == ErrRemoteOperation }

// VerificationError means a write was accepted but the input did not end up
// in the requested state.
type VerificationError struct {
	Input        string
	WantDisabled bool
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("error toggling input: %s; request OK, but input not %s", e.Input, stateName(e.WantDisabled))
}

func (e *VerificationError) Is(target error) bool { return target == ErrVerification }

func stateName(disabled bool) string {
	if disabled {
		return "disabled"
	}
	return "enabled"
}

// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and prysm contributors
//
// SPDX-License-Identifier: Apache-2.0
package splunk

import (
	"errors"
	"fmt"
)

// Error kinds returned by the client. Concrete errors match them through
// errors.Is.
const (
	ErrTransport errorKind = "TransportError"
	ErrDataShape errorKind = "DataShapeError"
)

var (
	errNoEndpoint = errors.New("endpoint not set")
	errNoUsername = errors.New("username not set")
	errNoPassword = errors.New("password not set")
)

// errorKind represents a class of client failure.
type errorKind string

// Error implements the error interface for `errorKind`.
func (e errorKind) Error() string { return string(e) }

// TransportError is a failed exchange with the Splunk management port: the
// request could not be sent, the body could not be read, or the server
// answered with a non-success status.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("error communicating with Splunk server (%s %s): %v", e.Method, e.URL, e.Err)
	case e.Message != "":
		return fmt.Sprintf("error communicating with Splunk server (%s %s): status %d: %s", e.Method, e.URL, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("error communicating with Splunk server (%s %s): status %d", e.Method, e.URL, e.StatusCode)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is allows `TransportError` to be compared against ErrTransport.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// DataShapeError reports a response that is not valid JSON or lacks a key
// the client depends on.
type DataShapeError struct {
	// Key is the gjson path that was missing or malformed.
	Key string
	// Input is the input URL being processed, empty for license queries.
	Input  string
	Detail string
}

func (e *DataShapeError) Error() string {
	msg := "unexpected data from Splunk"
	if e.Input != "" {
		msg += " for input " + e.Input
	}
	if e.Key != "" {
		msg += fmt.Sprintf(": key %q", e.Key)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is allows `DataShapeError` to be compared against ErrDataShape.
func (e *DataShapeError) Is(target error) bool { return target == ErrDataShape }

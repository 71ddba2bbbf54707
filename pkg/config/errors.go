// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and prysm contributors
//
// SPDX-License-Identifier: Apache-2.0

package config

import "strings"

// ErrConfiguration matches every configuration failure through errors.Is.
const ErrConfiguration errorKind = "ConfigurationError"

type errorKind string

func (e errorKind) Error() string { return string(e) }

// ValidationError lists everything wrong with a configuration.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrConfiguration }

// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and prysm contributors
//
// SPDX-License-Identifier: Apache-2.0

package watchdog

type WatchdogConfig struct {
	LicensingServer  string
	Inputs           []string
	EnableThreshold  float64
	DisableThreshold float64
	NodeName         string
}

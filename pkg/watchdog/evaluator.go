// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and prysm contributors
//
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"fmt"
	"math"
)

// Decision is what a cycle does to the configured inputs.
type Decision int

const (
	NoAction Decision = iota
	EnableAll
	DisableAll
)

var decisionNames = map[Decision]string{
	NoAction:   "no_action",
	EnableAll:  "enable_all",
	DisableAll: "disable_all",
}

func (d Decision) String() string {
	if name, ok := decisionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("decision(%d)", int(d))
}

func (d Decision) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Reason explains which branch produced a Decision.
type Reason string

const (
	ReasonOverQuota         Reason = "over_quota"
	ReasonUnderEnableLevel  Reason = "under_enable_threshold"
	ReasonOverDisableLevel  Reason = "over_disable_threshold"
	ReasonBetweenThresholds Reason = "between_thresholds"
	ReasonForced            Reason = "forced"
)

// UsageSnapshot is today's license usage. Quota and Used are in GiB.
type UsageSnapshot struct {
	Quota       float64 `json:"quota_gib"`
	Used        float64 `json:"used_gib"`
	PercentUsed float64 `json:"percent_used"`
}

// NewUsageSnapshot validates a raw (used, quota) pair and derives the
// percentage.
func NewUsageSnapshot(used, quota float64) (UsageSnapshot, error) {
	if math.IsNaN(used) || math.IsNaN(quota) || math.IsInf(used, 0) || math.IsInf(quota, 0) || used < 0 || quota <= 0 {
		return UsageSnapshot{}, &InvalidUsageDataError{Used: used, Quota: quota}
	}
	return UsageSnapshot{
		Quota:       quota,
		Used:        used,
		PercentUsed: 100 * used / quota,
	}, nil
}

// Evaluate classifies a snapshot against the enable and disable thresholds.
// Comparisons are strict, so a value equal to a threshold is NoAction. Once
// the quota is exceeded the day already counts as a violation and every
// input is enabled to catch up, whatever the thresholds say.
func Evaluate(snapshot UsageSnapshot, enableThreshold, disableThreshold float64) (Decision, Reason) {
	switch {
	case snapshot.PercentUsed > 100:
		return EnableAll, ReasonOverQuota
	case snapshot.PercentUsed < enableThreshold:
		return EnableAll, ReasonUnderEnableLevel
	case snapshot.PercentUsed > disableThreshold:
		return DisableAll, ReasonOverDisableLevel
	default:
		return NoAction, ReasonBetweenThresholds
	}
}

func (r Reason) describe() string {
	switch r {
	case ReasonOverQuota:
		return "over the quota for today, enabling all disabled inputs to catch up"
	case ReasonUnderEnableLevel:
		return "usage is under threshold, enabling all disabled inputs"
	case ReasonOverDisableLevel:
		return "usage is over threshold, disabling all enabled inputs"
	case ReasonForced:
		return "toggling all inputs on request"
	default:
		return "usage is between thresholds, nothing to do"
	}
}

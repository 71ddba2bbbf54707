// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and prysm contributors
//
// SPDX-License-Identifier: Apache-2.0
package splunk

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// licensePoolQuery reports used and quota volume, in GiB, for every pool of
// the active license stack.
const licensePoolQuery = `| rest /services/licenser/pools | rename title AS Pool | search [rest /services/licenser/groups | search is_active=1 | eval stack_id=stack_ids | fields stack_id] | eval quota=if(isnull(effective_quota),quota,effective_quota) | eval "Used"=round(used_bytes/1024/1024/1024, 3) | eval "Quota"=round(quota/1024/1024/1024, 3) | fields Pool "Used" "Quota"`

// Usage is today's license consumption as reported by the license master.
// Values are not validated here.
type Usage struct {
	Used  float64 `json:"used_gib"`
	Quota float64 `json:"quota_gib"`
	// Pools is the number of license pool rows that were summed.
	Pools int `json:"pools"`
}

// LicenseUsage runs the license pool query on host and sums the rows it
// returns. An empty host means the client's endpoint.
func (api *API) LicenseUsage(ctx context.Context, host string) (Usage, error) {
	host = api.host(host)
	endpoint := fmt.Sprintf("%s/servicesNS/%s/%s/search/jobs/export", host, url.PathEscape(api.username), url.PathEscape(api.searchApp))
	form := url.Values{
		"search":      {licensePoolQuery},
		"output_mode": {outputModeJSON},
		"exec_mode":   {"oneshot"},
	}

	log.Debug().Str("query", licensePoolQuery).Str("host", host).Msg("running splunk query")

	body, err := api.Post(ctx, endpoint, form)
	if err != nil {
		return Usage{}, err
	}
	return parseLicenseUsage(body)
}

// parseLicenseUsage decodes an export response. Export streams one JSON
// object per line; preview rows and lines without a `result` object are
// skipped.
func parseLicenseUsage(body []byte) (Usage, error) {
	var usage Usage

	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if !gjson.ValidBytes(line) {
			return Usage{}, &DataShapeError{Detail: fmt.Sprintf("invalid license data received: %s", line)}
		}
		if gjson.GetBytes(line, "preview").Bool() {
			continue
		}
		result := gjson.GetBytes(line, "result")
		if !result.Exists() {
			continue
		}

		used, err := requireFloat(result, "Used")
		if err != nil {
			return Usage{}, err
		}
		quota, err := requireFloat(result, "Quota")
		if err != nil {
			return Usage{}, err
		}
		usage.Used += used
		usage.Quota += quota
		usage.Pools++
	}
	if err := scanner.Err(); err != nil {
		return Usage{}, &DataShapeError{Detail: err.Error()}
	}

	if usage.Pools == 0 {
		return Usage{}, &DataShapeError{Key: "result", Detail: fmt.Sprintf("invalid license data received: %s", bytes.TrimSpace(body))}
	}
	return usage, nil
}

// requireFloat reads a number that Splunk may render as a string.
func requireFloat(result gjson.Result, key string) (float64, error) {
	path := "result." + key
	value := result.Get(key)
	switch value.Type {
	case gjson.Number:
		return value.Num, nil
	case gjson.String:
		f, err := strconv.ParseFloat(value.Str, 64)
		if err != nil {
			return 0, &DataShapeError{Key: path, Detail: fmt.Sprintf("%q is not a number", value.Str)}
		}
		return f, nil
	}
	if value.Exists() {
		return 0, &DataShapeError{Key: path, Detail: "not a number"}
	}
	return 0, &DataShapeError{Key: path, Detail: "missing"}
}

// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and prysm contributors
//
// SPDX-License-Identifier: Apache-2.0
package splunk

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLicenseUsage(t *testing.T) {
	api, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/servicesNS/admin/search/search/jobs/export", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, licensePoolQuery, r.PostForm.Get("search"))
		assert.Equal(t, "oneshot", r.PostForm.Get("exec_mode"))
		assert.Equal(t, "json", r.PostForm.Get("output_mode"))
		_, _ = io.WriteString(w, `{"preview":false,"offset":0,"result":{"Pool":"auto_generated_pool_enterprise","Used":"12.500","Quota":"50.000"}}`)
	})

	usage, err := api.LicenseUsage(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, Usage{Used: 12.5, Quota: 50, Pools: 1}, usage)
}

func TestLicenseUsageUsesGivenHost(t *testing.T) {
	var hit atomic.Bool
	_, other := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		hit.Store(true)
		_, _ = io.WriteString(w, `{"result":{"Used":"1","Quota":"2"}}`)
	})
	api, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("default endpoint must not be queried")
	})

	usage, err := api.LicenseUsage(context.Background(), other.URL+"/")
	require.NoError(t, err)
	assert.True(t, hit.Load())
	assert.InDelta(t, 50.0, 100*usage.Used/usage.Quota, 1e-9)
}

func TestParseLicenseUsageSumsPools(t *testing.T) {
	body := `{"preview":false,"offset":0,"result":{"Pool":"a","Used":"10","Quota":"100"}}
{"preview":false,"offset":1,"result":{"Pool":"b","Used":5.5,"Quota":50}}
{"preview":false,"offset":2,"lastrow":true}
`
	usage, err := parseLicenseUsage([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, 2, usage.Pools)
	assert.InDelta(t, 15.5, usage.Used, 1e-9)
	assert.InDelta(t, 150.0, usage.Quota, 1e-9)
}

func TestParseLicenseUsageSkipsPreviewRows(t *testing.T) {
	body := `{"preview":true,"offset":0,"result":{"Pool":"a","Used":"50","Quota":"100"}}
{"preview":false,"offset":0,"result":{"Pool":"a","Used":"50","Quota":"100"}}
`
	usage, err := parseLicenseUsage([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, Usage{Used: 50, Quota: 100, Pools: 1}, usage)
}

func TestParseLicenseUsageOnlyPreviewRows(t *testing.T) {
	_, err := parseLicenseUsage([]byte(`{"preview":true,"result":{"Used":"1","Quota":"2"}}`))
	require.ErrorIs(t, err, ErrDataShape)
}

func TestParseLicenseUsageMissingKey(t *testing.T) {
	_, err := parseLicenseUsage([]byte(`{"result":{"Used":"10"}}`))
	var derr *DataShapeError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, "result.Quota", derr.Key)
}

func TestParseLicenseUsageBadNumber(t *testing.T) {
	_, err := parseLicenseUsage([]byte(`{"result":{"Used":"ten","Quota":"100"}}`))
	var derr *DataShapeError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, "result.Used", derr.Key)
}

func TestParseLicenseUsageNoRows(t *testing.T) {
	_, err := parseLicenseUsage([]byte(`{"messages":[{"type":"FATAL","text":"bad search"}]}`))
	var derr *DataShapeError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, "result", derr.Key)

	_, err = parseLicenseUsage([]byte(``))
	assert.ErrorIs(t, err, ErrDataShape)
}

func TestParseLicenseUsageInvalidJSON(t *testing.T) {
	_, err := parseLicenseUsage([]byte(`<html>`))
	assert.ErrorIs(t, err, ErrDataShape)
}

func TestParseLicenseUsageKeepsNegativeValues(t *testing.T) {
	// Range checks belong to the caller.
	usage, err := parseLicenseUsage([]byte(`{"result":{"Used":"-1","Quota":"0"}}`))
	require.NoError(t, err)
	assert.Equal(t, -1.0, usage.Used)
	assert.Equal(t, 0.0, usage.Quota)
}

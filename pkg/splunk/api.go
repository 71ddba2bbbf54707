// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and prysm contributors
//
// SPDX-License-Identifier: Apache-2.0
package splunk

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultSearchApp = "search"
	outputModeJSON   = "json"
)

// HTTPClient defines an interface for HTTP operations.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Splunk REST client.
type Options struct {
	Endpoint string
	Username string
	Password string
	// SearchApp is the app namespace used for search jobs.
	SearchApp string
	Timeout   time.Duration
	// InsecureSkipVerify accepts the self-signed certificates Splunk ships on
	// its management port. Ignored when HTTPClient is set.
	InsecureSkipVerify bool
	HTTPClient         HTTPClient
}

// API is a client for the Splunk REST management API.
type API struct {
	Endpoint   string
	username   string
	password   string
	searchApp  string
	HTTPClient HTTPClient
}

// New creates a new Splunk client with basic validation.
func New(opts Options) (*API, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				// #nosec G402 -- Splunk management ports use self-signed certificates.
				TLSClientConfig: &tls.Config{InsecureSkipVerify: opts.InsecureSkipVerify},
			},
		}
	}

	searchApp := opts.SearchApp
	if searchApp == "" {
		searchApp = defaultSearchApp
	}

	return &API{
		Endpoint:   strings.TrimRight(opts.Endpoint, "/"),
		username:   opts.Username,
		password:   opts.Password,
		searchApp:  searchApp,
		HTTPClient: httpClient,
	}, nil
}

func validateOptions(opts Options) error {
	switch {
	case opts.Endpoint == "":
		return errNoEndpoint
	case opts.Username == "":
		return errNoUsername
	case opts.Password == "":
		return errNoPassword
	default:
		return nil
	}
}

// Get issues an authenticated GET and returns the response body.
func (api *API) Get(ctx context.Context, rawURL string) ([]byte, error) {
	status, body, err := api.call(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return checkStatus(http.MethodGet, rawURL, status, body)
}

// Post issues an authenticated form POST and returns the response body.
func (api *API) Post(ctx context.Context, rawURL string, form url.Values) ([]byte, error) {
	status, body, err := api.call(ctx, http.MethodPost, rawURL, form)
	if err != nil {
		return nil, err
	}
	return checkStatus(http.MethodPost, rawURL, status, body)
}

// call performs a single request and returns the status and body. Only
// failures to complete the exchange are returned as errors.
func (api *API) call(ctx context.Context, method, rawURL string, form url.Values) (int, []byte, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return 0, nil, &TransportError{Method: method, URL: rawURL, Err: err}
	}
	req.SetBasicAuth(api.username, api.password)
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := api.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, &TransportError{Method: method, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &TransportError{Method: method, URL: rawURL, StatusCode: resp.StatusCode, Err: err}
	}

	log.Debug().
		Str("method", method).
		Str("url", rawURL).
		Int("status", resp.StatusCode).
		Str("response", string(data)).
		Msg("splunk response")

	return resp.StatusCode, data, nil
}

// checkStatus turns non-success statuses into a TransportError carrying the
// first message Splunk put in the body, if any.
func checkStatus(method, rawURL string, status int, body []byte) ([]byte, error) {
	if status >= 200 && status < 300 {
		return body, nil
	}
	return nil, &TransportError{
		Method:     method,
		URL:        rawURL,
		StatusCode: status,
		Message:    gjson.GetBytes(body, "messages.0.text").String(),
	}
}

// buildURL appends a path suffix and query arguments to base, keeping any
// query string base already carries.
func buildURL(base, suffix string, args url.Values) string {
	path, query, _ := strings.Cut(base, "?")
	path = strings.TrimRight(path, "/") + suffix

	encoded := args.Encode()
	switch {
	case query == "" && encoded == "":
		return path
	case query == "":
		return path + "?" + encoded
	case encoded == "":
		return path + "?" + query
	default:
		return path + "?" + query + "&" + encoded
	}
}

func jsonArgs() url.Values {
	return url.Values{"output_mode": {outputModeJSON}}
}

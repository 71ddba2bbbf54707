// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and prysm contributors
//
// SPDX-License-Identifier: Apache-2.0
package splunk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	messageTypeError = "ERROR"
	disabledPath     = "entry.0.content.disabled"
)

// InputState is the observed state of one data input.
type InputState struct {
	URL      string `json:"url"`
	Disabled bool   `json:"disabled"`
}

// Message is an entry of the `messages` array Splunk attaches to responses.
type Message struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// WriteResult is the decoded response to an enable or disable request.
// State is only populated when Messages carries no ERROR.
type WriteResult struct {
	State    InputState `json:"state"`
	Messages []Message  `json:"messages"`
}

// FirstError returns the first ERROR-severity message, if any.
func (w WriteResult) FirstError() (Message, bool) {
	for _, m := range w.Messages {
		if strings.EqualFold(m.Type, messageTypeError) {
			return m, true
		}
	}
	return Message{}, false
}

// DiscoveredInput is an input found on a host that supports enable/disable.
type DiscoveredInput struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Disabled bool   `json:"disabled"`
}

// InputState fetches the current state of the input at inputURL.
func (api *API) InputState(ctx context.Context, inputURL string) (InputState, error) {
	body, err := api.Get(ctx, buildURL(inputURL, "", jsonArgs()))
	if err != nil {
		return InputState{}, err
	}
	return parseInputState(inputURL, body)
}

// SetInputState requests the input at inputURL to be disabled or enabled.
// Error statuses that carry Splunk messages are returned as a WriteResult so
// the caller sees the server's own explanation.
func (api *API) SetInputState(ctx context.Context, inputURL string, disabled bool) (WriteResult, error) {
	suffix := "/enable"
	if disabled {
		suffix = "/disable"
	}
	target := buildURL(inputURL, suffix, nil)

	status, body, err := api.call(ctx, http.MethodPost, target, jsonArgs())
	if err != nil {
		return WriteResult{}, err
	}

	result, err := parseWriteResult(inputURL, body)
	if status >= 300 {
		if _, ok := result.FirstError(); ok && err == nil {
			return result, nil
		}
		_, statusErr := checkStatus(http.MethodPost, target, status, body)
		return WriteResult{}, statusErr
	}
	return result, err
}

// DiscoverInputs lists every input on host that can be enabled or disabled.
// An empty host means the client's endpoint.
func (api *API) DiscoverInputs(ctx context.Context, host string) ([]DiscoveredInput, error) {
	host = api.host(host)
	args := jsonArgs()
	args.Set("count", "0")
	endpoint := fmt.Sprintf("%s/servicesNS/%s/launcher/data/inputs/all", host, url.PathEscape(api.username))

	body, err := api.Get(ctx, buildURL(endpoint, "", args))
	if err != nil {
		return nil, err
	}
	return parseDiscoveredInputs(host, body)
}

func (api *API) host(host string) string {
	if host == "" {
		return api.Endpoint
	}
	return strings.TrimRight(host, "/")
}

func parseInputState(inputURL string, body []byte) (InputState, error) {
	if !gjson.ValidBytes(body) {
		return InputState{}, &DataShapeError{Input: inputURL, Detail: "response is not valid JSON"}
	}
	disabled, err := requireBool(gjson.ParseBytes(body), disabledPath, inputURL)
	if err != nil {
		return InputState{}, err
	}
	return InputState{URL: inputURL, Disabled: disabled}, nil
}

func parseWriteResult(inputURL string, body []byte) (WriteResult, error) {
	if !gjson.ValidBytes(body) {
		return WriteResult{}, &DataShapeError{Input: inputURL, Detail: "response is not valid JSON"}
	}
	root := gjson.ParseBytes(body)

	messages := root.Get("messages")
	if !messages.Exists() {
		return WriteResult{}, &DataShapeError{Key: "messages", Input: inputURL}
	}
	if !messages.IsArray() {
		return WriteResult{}, &DataShapeError{Key: "messages", Input: inputURL, Detail: "not an array"}
	}

	result := WriteResult{Messages: []Message{}}
	for _, m := range messages.Array() {
		result.Messages = append(result.Messages, Message{
			Type: m.Get("type").String(),
			Text: m.Get("text").String(),
		})
	}
	if _, ok := result.FirstError(); ok {
		return result, nil
	}

	disabled, err := requireBool(root, disabledPath, inputURL)
	if err != nil {
		return WriteResult{}, err
	}
	result.State = InputState{URL: inputURL, Disabled: disabled}
	return result, nil
}

func parseDiscoveredInputs(host string, body []byte) ([]DiscoveredInput, error) {
	if !gjson.ValidBytes(body) {
		return nil, &DataShapeError{Detail: "response is not valid JSON"}
	}
	root := gjson.ParseBytes(body)
	entries := root.Get("entry")
	if !entries.IsArray() {
		return nil, &DataShapeError{Key: "entry"}
	}

	inputs := []DiscoveredInput{}
	for i, entry := range entries.Array() {
		links := entry.Get("links")
		if !links.Get("enable").Exists() && !links.Get("disable").Exists() {
			continue
		}
		alternate := links.Get("alternate")
		if !alternate.Exists() {
			return nil, &DataShapeError{Key: fmt.Sprintf("entry.%d.links.alternate", i)}
		}
		disabled, err := requireBool(root, fmt.Sprintf("entry.%d.content.disabled", i), "")
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, DiscoveredInput{
			Name:     entry.Get("name").String(),
			URL:      host + alternate.String(),
			Disabled: disabled,
		})
	}
	return inputs, nil
}

// requireBool reads a boolean at path. Splunk renders flags either as JSON
// booleans or as "0"/"1"/"true"/"false" strings depending on the endpoint.
func requireBool(root gjson.Result, path, input string) (bool, error) {
	value := root.Get(path)
	switch value.Type {
	case gjson.True:
		return true, nil
	case gjson.False:
		return false, nil
	case gjson.Number:
		return value.Int() != 0, nil
	case gjson.String:
		b, err := strconv.ParseBool(value.Str)
		if err != nil {
			return false, &DataShapeError{Key: path, Input: input, Detail: fmt.Sprintf("%q is not a boolean", value.Str)}
		}
		return b, nil
	case gjson.JSON:
		return false, &DataShapeError{Key: path, Input: input, Detail: "not a boolean"}
	case gjson.Null:
		if value.Exists() {
			return false, &DataShapeError{Key: path, Input: input, Detail: "null value"}
		}
	}
	return false, &DataShapeError{Key: path, Input: input, Detail: "missing"}
}

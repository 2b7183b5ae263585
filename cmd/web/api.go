package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// apiClient talks to the chat API on behalf of the browser session.
type apiClient struct {
	base string
	http *http.Client
}

// do sends an optional JSON body and returns the raw response body and status.
func (c *apiClient) do(method, path, token string, payload any) ([]byte, int, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.base+path, body)
	if err != nil {
		return nil, 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return data, resp.StatusCode, nil
}

// errorMessage turns an API error body into one line for display.
func errorMessage(data []byte) string {
	var errResp struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(data, &errResp); err != nil || errResp.Error == "" {
		return strings.TrimSpace(string(data))
	}
	if len(errResp.Fields) == 0 {
		return errResp.Error
	}
	names := make([]string, 0, len(errResp.Fields))
	for name := range errResp.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, errResp.Fields[name]))
	}
	return strings.Join(parts, "; ")
}

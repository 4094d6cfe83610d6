package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// TestContext carries per-scenario state against a running server: tokens
// by user alias, remembered ids and the last response.
type TestContext struct {
	baseURL string
	client  *http.Client
	run     string

	tokens map[string]string
	ids    map[string]int64

	lastStatus int
	lastBody   map[string]any
}

func NewTestContext(baseURL string) *TestContext {
	return &TestContext{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Reset clears scenario state. Usernames and emails get a per-scenario
// suffix so scenarios can run repeatedly against one server.
func (tc *TestContext) Reset() {
	tc.run = strconv.FormatInt(time.Now().UnixNano(), 36)
	tc.tokens = make(map[string]string)
	tc.ids = make(map[string]int64)
	tc.lastStatus = 0
	tc.lastBody = nil
}

func (tc *TestContext) Unique(name string) string {
	return name + "-" + tc.run
}

func (tc *TestContext) Do(ctx context.Context, method, path, as string, body any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, tc.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if as != "" {
		token, ok := tc.tokens[as]
		if !ok {
			return fmt.Errorf("no token for user %q", as)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody = nil
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &tc.lastBody); err != nil {
			return fmt.Errorf("decode response %s: %w", raw, err)
		}
	}
	return nil
}

func (tc *TestContext) Status() int { return tc.lastStatus }

func (tc *TestContext) Field(name string) (any, error) {
	v, ok := tc.lastBody[name]
	if !ok {
		return nil, fmt.Errorf("response has no field %q: %v", name, tc.lastBody)
	}
	return v, nil
}

// FieldID reads a numeric field from the last response.
func (tc *TestContext) FieldID(name string) (int64, error) {
	v, err := tc.Field(name)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("field %q is %T, not a number", name, v)
	}
	return int64(f), nil
}

func (tc *TestContext) SetToken(alias, token string) { tc.tokens[alias] = token }

func (tc *TestContext) Remember(name string, id int64) { tc.ids[name] = id }

func (tc *TestContext) Recall(name string) (int64, error) {
	id, ok := tc.ids[name]
	if !ok {
		return 0, fmt.Errorf("nothing remembered as %q", name)
	}
	return id, nil
}

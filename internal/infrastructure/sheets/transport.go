package sheets

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/apperror"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cast"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// objectSpan finds the outermost {...} in a body wrapped in noise.
var objectSpan = regexp.MustCompile(`(?s)\{.*\}`)

var errNoJSON = errors.New("sheets: body carries no JSON object")

// envelope is a decoded web app answer: {success, error, message, ...}.
type envelope map[string]interface{}

func (e envelope) ok() bool {
	return cast.ToBool(e["success"])
}

// str returns the first non-empty string among keys.
func (e envelope) str(keys ...string) string {
	for _, k := range keys {
		if v, ok := e[k]; ok && v != nil {
			if s := cast.ToString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func (e envelope) flag(key string) bool {
	return cast.ToBool(e[key])
}

func (e envelope) object(key string) envelope {
	if m, ok := e[key].(map[string]interface{}); ok {
		return envelope(m)
	}
	return envelope{}
}

// records returns the rows of the first array-valued key among keys.
func (e envelope) records(keys ...string) []map[string]interface{} {
	for _, k := range keys {
		if arr, ok := e[k].([]interface{}); ok {
			return toRecords(arr)
		}
	}
	return []map[string]interface{}{}
}

func toRecords(arr []interface{}) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(arr))
	for _, v := range arr {
		if m, ok := v.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

// get issues a read: GET ?action=<action>&_=<unix ms> plus params.
func (c *Client) get(ctx context.Context, action string, timeout time.Duration, params url.Values) (envelope, error) {
	body, err := c.getRaw(ctx, action, timeout, params)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		c.log.Warnw("undecodable response", "action", action, "error", err)
		return nil, apperror.NewTransportError(apperror.KindNetwork)
	}
	return env, nil
}

func (c *Client) getRaw(ctx context.Context, action string, timeout time.Duration, params url.Values) ([]byte, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		c.log.Errorw("invalid sheet url", "url", c.baseURL, "error", err)
		return nil, apperror.NewTransportError(apperror.KindNetwork)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("action", action)
	q.Set("_", strconv.FormatInt(c.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()

	return c.roundTrip(ctx, action, timeout, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	})
}

// post issues a write: POST with a JSON body that names the action.
func (c *Client) post(ctx context.Context, action string, timeout time.Duration, payload map[string]interface{}) (envelope, error) {
	msg := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		msg[k] = v
	}
	msg["action"] = action

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, apperror.New(apperror.KindInternal, "Failed to encode request")
	}

	body, err := c.roundTrip(ctx, action, timeout, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		c.log.Warnw("undecodable response", "action", action, "error", err)
		return nil, apperror.NewTransportError(apperror.KindNetwork)
	}
	return env, nil
}

func (c *Client) roundTrip(ctx context.Context, action string, timeout time.Duration, build func(context.Context) (*http.Request, error)) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := build(ctx)
	if err != nil {
		c.log.Errorw("build request", "action", action, "error", err)
		return nil, apperror.NewTransportError(apperror.KindNetwork)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.classify(ctx, action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warnw("server error", "action", action, "status", resp.StatusCode)
		return nil, apperror.NewTransportError(apperror.KindServer)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.classify(ctx, action, err)
	}
	c.log.Debugw("sheet call", "action", action, "status", resp.StatusCode, "latency", time.Since(start))
	return body, nil
}

func (c *Client) classify(ctx context.Context, action string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		c.log.Warnw("request timed out", "action", action, "error", err)
		return apperror.NewTransportError(apperror.KindTimeout)
	}
	c.log.Warnw("request failed", "action", action, "error", err)
	return apperror.NewTransportError(apperror.KindNetwork)
}

// decodeLoose parses body as JSON, falling back to its first {...} span.
func decodeLoose(body []byte) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err == nil {
		return v, nil
	}
	span := objectSpan.Find(body)
	if span == nil {
		return nil, errNoJSON
	}
	if err := json.Unmarshal(span, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// salesRecords picks the sales rows out of a loosely shaped answer: the
// "sales" field, a bare array, or the first array-valued field. ok is false
// only when the answer reports failure; any other shape is an empty sheet.
func salesRecords(v interface{}) (rows []map[string]interface{}, ok bool) {
	switch t := v.(type) {
	case []interface{}:
		return toRecords(t), true
	case map[string]interface{}:
		if s, has := t["success"]; has && !cast.ToBool(s) {
			return nil, false
		}
		if arr, is := t["sales"].([]interface{}); is {
			return toRecords(arr), true
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if arr, is := t[k].([]interface{}); is {
				return toRecords(arr), true
			}
		}
	}
	return []map[string]interface{}{}, true
}

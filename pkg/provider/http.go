package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strconv"
	"time"
)

// httpClient wraps the shared HTTP transport with the adapter-wide timeout
// and body cap. All provider fetches go through it.
type httpClient struct {
	c       *http.Client
	timeout time.Duration
}

func newHTTPClient(timeout time.Duration) *httpClient {
	return &httpClient{c: &http.Client{Timeout: timeout}, timeout: timeout}
}

func (h *httpClient) getJSON(ctx context.Context, url string, headers map[string]string, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := h.c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20)) // 10MB max
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (h *httpClient) postJSON(ctx context.Context, url string, headers map[string]string, payload, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := h.c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

// ── JSON-RPC ────────────────────────────────────────────────

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      int         `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// rpcCall performs a JSON-RPC call and unmarshals the result field.
func (h *httpClient) rpcCall(ctx context.Context, rpcURL, method string, params, out interface{}) error {
	var resp struct {
		Result json.RawMessage `json:"result"`
		Error  *rpcError       `json:"error"`
	}
	if err := h.postJSON(ctx, rpcURL, nil, rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}, &resp); err != nil {
		return err
	}
	if resp.Error != nil {
		return fmt.Errorf("rpc error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(resp.Result, out)
}

// ── Shared parse helpers ────────────────────────────────────

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

func parseUnixStr(s string) time.Time {
	ts, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}

// tokenValue converts a raw integer amount string with the given decimals
// to a float64 UI amount.
func tokenValue(rawStr string, decimals int) float64 {
	if rawStr == "" || rawStr == "0" {
		return 0
	}
	val, ok := new(big.Float).SetString(rawStr)
	if !ok {
		return 0
	}
	div := big.NewFloat(1)
	for i := 0; i < decimals; i++ {
		div.Mul(div, big.NewFloat(10))
	}
	result, _ := new(big.Float).Quo(val, div).Float64()
	return result
}

// unixFlexible normalizes a timestamp that may be seconds or milliseconds.
func unixFlexible(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	if ts > 1e10 { // milliseconds
		ts = ts / 1000
	}
	return time.Unix(ts, 0)
}

func abbrev(addr string) string {
	if len(addr) > 12 {
		return addr[:6] + "..." + addr[len(addr)-4:]
	}
	return addr
}

package pricesource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// maxBodySize caps how much of a response is read
const maxBodySize = 4 << 20

// get performs a GET request and returns the body of a 200 response
func get(ctx context.Context, client *http.Client, base string, params url.Values) ([]byte, error) {
	addr := base
	if len(params) > 0 {
		addr += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "assetledger")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot http GET %v%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// getJSON fetches and decodes a JSON document, keeping numbers as json.Number
func getJSON(ctx context.Context, client *http.Client, base string, params url.Values) (any, error) {
	body, err := get(ctx, client, base, params)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return doc, nil
}

// lookup evaluates a jsonpath expression against doc
func lookup(path string, doc any) (any, error) {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("error reading %q: %w", path, err)
	}
	// jsonpath may return a list of one answer or the answer itself: keep the first one
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil, fmt.Errorf("error reading %q: no match", path)
		}
		v = list[0]
	}
	return v, nil
}

// lookupDecimal evaluates path and converts the result to a decimal
func lookupDecimal(path string, doc any) (decimal.Decimal, error) {
	v, err := lookup(path, doc)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := toDecimal(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error reading %q: %w", path, err)
	}
	return d, nil
}

// lookupOptional is lookupDecimal returning nil when the value is absent, empty or zero
func lookupOptional(path string, doc any) *decimal.Decimal {
	if path == "" {
		return nil
	}
	d, err := lookupDecimal(path, doc)
	if err != nil || d.IsZero() {
		return nil
	}
	return &d
}

// toDecimal converts a decoded JSON scalar; some APIs send numbers as strings
func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case json.Number:
		return decimal.NewFromString(n.String())
	case float64:
		return decimal.NewFromFloat(n), nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		return decimal.NewFromString(s)
	case nil:
		return decimal.Zero, fmt.Errorf("value is null")
	}
	return decimal.Zero, fmt.Errorf("not a number: %v", v)
}

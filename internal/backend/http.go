package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jprabhas/openxla-xla/internal/hlo"
)

const defaultTimeout = 30 * time.Second

// HTTPClient talks to an execution service over JSON HTTP. One client is
// one backend session: handles returned by the service stay valid until
// Close.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a client for the given server address. A bare
// host:port gets an http:// prefix.
func NewHTTPClient(server string, timeout time.Duration) *HTTPClient {
	baseURL := server
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string { return c.baseURL }

// Wire types for the execution service API.

type apiShapedValue struct {
	Shape  string    `json:"shape"`
	Bools  []bool    `json:"bools,omitempty"`
	Ints   []int64   `json:"ints,omitempty"`
	Floats []float64 `json:"floats,omitempty"`
}

type apiInstruction struct {
	Opcode string `json:"opcode"`
	Name   string `json:"name,omitempty"`
	Shape  string `json:"shape"`
}

type apiComputation struct {
	Name         string           `json:"name"`
	Instructions []apiInstruction `json:"instructions"`
}

type apiModule struct {
	Name         string           `json:"name"`
	Computations []apiComputation `json:"computations"`
}

type loadRequest struct {
	Module apiModule `json:"module"`
}

type loadResponse struct {
	ComputationID string `json:"computation_id"`
}

type transferRequest struct {
	Value apiShapedValue `json:"value"`
}

type transferResponse struct {
	DataID string `json:"data_id"`
}

type fakeArgumentsResponse struct {
	DataIDs []string `json:"data_ids"`
}

type executeRequest struct {
	ComputationID string   `json:"computation_id"`
	ArgumentIDs   []string `json:"argument_ids"`
	HloProfile    bool     `json:"hlo_profile,omitempty"`
	FetchResult   bool     `json:"fetch_result"`
}

type executeResponse struct {
	Result        *apiShapedValue `json:"result,omitempty"`
	ComputeTimeNs int64           `json:"compute_time_ns"`
}

type infeedRequest struct {
	Value apiShapedValue `json:"value"`
}

// LoadComputation implements Client.
func (c *HTTPClient) LoadComputation(ctx context.Context, module *hlo.Module) (ComputationHandle, error) {
	var resp loadResponse
	if err := c.post(ctx, "/v1/computations", loadRequest{Module: toAPIModule(module)}, &resp); err != nil {
		return "", fmt.Errorf("load computation: %w", err)
	}
	return ComputationHandle(resp.ComputationID), nil
}

// TransferToBackend implements Client.
func (c *HTTPClient) TransferToBackend(ctx context.Context, lit hlo.Literal) (DataHandle, error) {
	var resp transferResponse
	if err := c.post(ctx, "/v1/data", transferRequest{Value: toAPIValue(lit)}, &resp); err != nil {
		return "", fmt.Errorf("transfer to backend: %w", err)
	}
	return DataHandle(resp.DataID), nil
}

// MakeFakeArguments implements Client.
func (c *HTTPClient) MakeFakeArguments(ctx context.Context, comp ComputationHandle) ([]DataHandle, error) {
	var resp fakeArgumentsResponse
	path := fmt.Sprintf("/v1/computations/%s/fake-arguments", comp)
	if err := c.post(ctx, path, struct{}{}, &resp); err != nil {
		return nil, fmt.Errorf("make fake arguments: %w", err)
	}
	handles := make([]DataHandle, len(resp.DataIDs))
	for i, id := range resp.DataIDs {
		handles[i] = DataHandle(id)
	}
	return handles, nil
}

// ExecuteAndFetch implements Client.
func (c *HTTPClient) ExecuteAndFetch(ctx context.Context, comp ComputationHandle, args []DataHandle, opts ExecOptions) (hlo.Literal, Profile, error) {
	resp, err := c.execute(ctx, comp, args, opts, true)
	if err != nil {
		return hlo.Literal{}, Profile{}, err
	}
	if resp.Result == nil {
		return hlo.Literal{}, Profile{}, fmt.Errorf("execute: backend returned no result")
	}
	lit, err := fromAPIValue(*resp.Result)
	if err != nil {
		return hlo.Literal{}, Profile{}, fmt.Errorf("execute: %w", err)
	}
	return lit, Profile{ComputeTime: time.Duration(resp.ComputeTimeNs)}, nil
}

// Execute implements Client.
func (c *HTTPClient) Execute(ctx context.Context, comp ComputationHandle, args []DataHandle, opts ExecOptions) (Profile, error) {
	resp, err := c.execute(ctx, comp, args, opts, false)
	if err != nil {
		return Profile{}, err
	}
	return Profile{ComputeTime: time.Duration(resp.ComputeTimeNs)}, nil
}

func (c *HTTPClient) execute(ctx context.Context, comp ComputationHandle, args []DataHandle, opts ExecOptions, fetch bool) (*executeResponse, error) {
	ids := make([]string, len(args))
	for i, h := range args {
		ids[i] = string(h)
	}
	req := executeRequest{
		ComputationID: string(comp),
		ArgumentIDs:   ids,
		HloProfile:    opts.HloProfile,
		FetchResult:   fetch,
	}
	var resp executeResponse
	if err := c.post(ctx, "/v1/executions", req, &resp); err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	return &resp, nil
}

// TransferToInfeed implements Client.
func (c *HTTPClient) TransferToInfeed(ctx context.Context, lit hlo.Literal) error {
	if err := c.post(ctx, "/v1/infeed", infeedRequest{Value: toAPIValue(lit)}, nil); err != nil {
		return fmt.Errorf("transfer to infeed: %w", err)
	}
	return nil
}

// Close implements Client. It releases the backend session.
func (c *HTTPClient) Close() error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+"/v1/session", nil)
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	c.addHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	return parseResponse(resp, nil)
}

func (c *HTTPClient) post(ctx context.Context, path string, body, target any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.addHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	return parseResponse(resp, target)
}

// addHeaders adds common headers. Every request carries a fresh ULID so
// client and service logs can be correlated.
func (c *HTTPClient) addHeaders(req *http.Request) {
	req.Header.Set("X-Request-Id", ulid.Make().String())
	req.Header.Set("User-Agent", "replay-computation/1.0")
}

// parseResponse parses a JSON response body into target, mapping error
// responses to Go errors.
func parseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Message != "" {
			return fmt.Errorf("[%s] %s", errResp.Code, errResp.Message)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	} else {
		io.Copy(io.Discard, resp.Body)
	}
	return nil
}

func toAPIModule(m *hlo.Module) apiModule {
	out := apiModule{Name: m.Name}
	for _, comp := range m.Computations {
		ac := apiComputation{Name: comp.Name}
		for _, inst := range comp.Instructions {
			ac.Instructions = append(ac.Instructions, apiInstruction{
				Opcode: inst.Opcode,
				Name:   inst.Name,
				Shape:  inst.Shape.HumanString(),
			})
		}
		out.Computations = append(out.Computations, ac)
	}
	return out
}

func toAPIValue(lit hlo.Literal) apiShapedValue {
	return apiShapedValue{
		Shape:  lit.Shape().HumanString(),
		Bools:  lit.Bools(),
		Ints:   lit.Ints(),
		Floats: lit.Floats(),
	}
}

func fromAPIValue(v apiShapedValue) (hlo.Literal, error) {
	shape, err := hlo.ParseShape(v.Shape)
	if err != nil {
		return hlo.Literal{}, err
	}
	switch {
	case shape.Element.IsBool():
		return hlo.NewBoolLiteral(shape, v.Bools)
	case shape.Element.IsInteger():
		return hlo.NewIntLiteral(shape, v.Ints)
	default:
		return hlo.NewFloatLiteral(shape, v.Floats)
	}
}

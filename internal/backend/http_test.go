package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jprabhas/openxla-xla/internal/hlo"
)

// mockServer routes requests to handlers by path prefix.
type mockServer struct {
	*httptest.Server
	handlers map[string]http.HandlerFunc
}

func newMockServer() *mockServer {
	m := &mockServer{handlers: make(map[string]http.HandlerFunc)}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for pattern, handler := range m.handlers {
			if strings.HasPrefix(r.URL.Path, pattern) {
				handler(w, r)
				return
			}
		}
		http.NotFound(w, r)
	}))
	return m
}

func (m *mockServer) handle(pattern string, handler http.HandlerFunc) {
	m.handlers[pattern] = handler
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func testClient(m *mockServer) *HTTPClient {
	return NewHTTPClient(m.URL, 5*time.Second)
}

func TestHTTPClient_LoadComputation(t *testing.T) {
	m := newMockServer()
	defer m.Close()

	var gotReq loadRequest
	m.handle("/v1/computations", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("missing X-Request-Id header")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		jsonResponse(w, http.StatusOK, loadResponse{ComputationID: "comp-1"})
	})

	module := &hlo.Module{
		Name: "m",
		Computations: []hlo.Computation{{
			Name: "m.entry",
			Instructions: []hlo.Instruction{
				{Opcode: hlo.OpcodeParameter, Name: "p0", Shape: hlo.ArrayShape(hlo.F32, 2)},
			},
		}},
	}

	comp, err := testClient(m).LoadComputation(context.Background(), module)
	if err != nil {
		t.Fatalf("LoadComputation: %v", err)
	}
	if comp != "comp-1" {
		t.Fatalf("handle = %q, want %q", comp, "comp-1")
	}
	if gotReq.Module.Name != "m" {
		t.Fatalf("sent module name = %q, want %q", gotReq.Module.Name, "m")
	}
	if len(gotReq.Module.Computations) != 1 || gotReq.Module.Computations[0].Instructions[0].Shape != "f32[2]" {
		t.Fatalf("sent module = %+v", gotReq.Module)
	}
}

func TestHTTPClient_TransferToBackend(t *testing.T) {
	m := newMockServer()
	defer m.Close()

	var gotReq transferRequest
	m.handle("/v1/data", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		jsonResponse(w, http.StatusOK, transferResponse{DataID: "data-9"})
	})

	h, err := testClient(m).TransferToBackend(context.Background(), hlo.ScalarS32(5))
	if err != nil {
		t.Fatalf("TransferToBackend: %v", err)
	}
	if h != "data-9" {
		t.Fatalf("handle = %q, want %q", h, "data-9")
	}
	if gotReq.Value.Shape != "s32[]" || len(gotReq.Value.Ints) != 1 || gotReq.Value.Ints[0] != 5 {
		t.Fatalf("sent value = %+v", gotReq.Value)
	}
}

func TestHTTPClient_MakeFakeArguments(t *testing.T) {
	m := newMockServer()
	defer m.Close()

	m.handle("/v1/computations/comp-1/fake-arguments", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, fakeArgumentsResponse{DataIDs: []string{"d1", "d2"}})
	})

	handles, err := testClient(m).MakeFakeArguments(context.Background(), "comp-1")
	if err != nil {
		t.Fatalf("MakeFakeArguments: %v", err)
	}
	if len(handles) != 2 || handles[0] != "d1" || handles[1] != "d2" {
		t.Fatalf("handles = %v, want [d1 d2]", handles)
	}
}

func TestHTTPClient_ExecuteAndFetch(t *testing.T) {
	m := newMockServer()
	defer m.Close()

	var gotReq executeRequest
	m.handle("/v1/executions", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		jsonResponse(w, http.StatusOK, executeResponse{
			Result:        &apiShapedValue{Shape: "s32[]", Ints: []int64{42}},
			ComputeTimeNs: 1500,
		})
	})

	lit, profile, err := testClient(m).ExecuteAndFetch(context.Background(), "comp-1",
		[]DataHandle{"d1"}, ExecOptions{HloProfile: true})
	if err != nil {
		t.Fatalf("ExecuteAndFetch: %v", err)
	}
	if got := lit.String(); got != "42" {
		t.Fatalf("result = %q, want %q", got, "42")
	}
	if profile.ComputeTime != 1500*time.Nanosecond {
		t.Fatalf("ComputeTime = %v, want 1.5µs", profile.ComputeTime)
	}
	if !gotReq.FetchResult || !gotReq.HloProfile {
		t.Fatalf("sent request = %+v, want fetch_result and hlo_profile set", gotReq)
	}
	if gotReq.ComputationID != "comp-1" || len(gotReq.ArgumentIDs) != 1 {
		t.Fatalf("sent request = %+v", gotReq)
	}
}

func TestHTTPClient_ExecuteNoFetch(t *testing.T) {
	m := newMockServer()
	defer m.Close()

	var gotReq executeRequest
	m.handle("/v1/executions", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		jsonResponse(w, http.StatusOK, executeResponse{ComputeTimeNs: 100})
	})

	profile, err := testClient(m).Execute(context.Background(), "comp-1", nil, ExecOptions{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if profile.ComputeTime != 100*time.Nanosecond {
		t.Fatalf("ComputeTime = %v, want 100ns", profile.ComputeTime)
	}
	if gotReq.FetchResult {
		t.Fatal("Execute should not request the result")
	}
}

func TestHTTPClient_ErrorMapping(t *testing.T) {
	m := newMockServer()
	defer m.Close()

	m.handle("/v1/executions", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusInternalServerError, map[string]string{
			"code":    "XR-EXEC-5001",
			"message": "device out of memory",
		})
	})

	_, err := testClient(m).Execute(context.Background(), "comp-1", nil, ExecOptions{})
	if err == nil {
		t.Fatal("Execute should fail")
	}
	if !strings.Contains(err.Error(), "device out of memory") {
		t.Fatalf("err = %v, want backend message", err)
	}
}

func TestHTTPClient_TransferToInfeedAndClose(t *testing.T) {
	m := newMockServer()
	defer m.Close()

	infeeds := 0
	m.handle("/v1/infeed", func(w http.ResponseWriter, r *http.Request) {
		infeeds++
		jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})
	})
	closed := false
	m.handle("/v1/session", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("Close method = %s, want DELETE", r.Method)
		}
		closed = true
		jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})
	})

	c := testClient(m)
	lit, _ := hlo.NewFloatLiteral(hlo.ArrayShape(hlo.F32, 2), []float64{1, 2})
	if err := c.TransferToInfeed(context.Background(), lit); err != nil {
		t.Fatalf("TransferToInfeed: %v", err)
	}
	if infeeds != 1 {
		t.Fatalf("infeeds = %d, want 1", infeeds)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !closed {
		t.Fatal("Close did not hit the session endpoint")
	}
}

func TestHTTPClient_BaseURLPrefix(t *testing.T) {
	c := NewHTTPClient("localhost:6060", 0)
	if got := c.BaseURL(); got != "http://localhost:6060" {
		t.Fatalf("BaseURL() = %q, want %q", got, "http://localhost:6060")
	}
	c = NewHTTPClient("https://replay.example.com", 0)
	if got := c.BaseURL(); got != "https://replay.example.com" {
		t.Fatalf("BaseURL() = %q", got)
	}
}

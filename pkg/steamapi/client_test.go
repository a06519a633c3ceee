package steamapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/samvad-hq/steamwatch/pkg/httpclient"
)

type fakeResponse struct {
	status int
	body   []byte
}

func (r fakeResponse) Body() []byte    { return r.body }
func (r fakeResponse) StatusCode() int { return r.status }

// fakeTransport records every request and replies with a canned response.
type fakeTransport struct {
	status   int
	body     string
	err      error
	requests []httpclient.Request
}

func (f *fakeTransport) Do(_ context.Context, req httpclient.Request) (httpclient.Response, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	return fakeResponse{status: status, body: []byte(f.body)}, nil
}

func newTestClient(t *testing.T, tr *fakeTransport) *Client {
	t.Helper()
	c, err := New("secret", tr, WithBaseURL("https://api.example.test/"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestExecuteDecodeErrorTakesPrecedenceOverStatus(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusInternalServerError} {
		tr := &fakeTransport{status: status, body: "<html>oops</html>"}
		_, err := newTestClient(t, tr).Execute(context.Background(), "ISteamUser/X/v1", RequestConfig{})
		var decErr *DecodeError
		if !errors.As(err, &decErr) {
			t.Fatalf("status %d: expected DecodeError, got %v", status, err)
		}
		if !errors.Is(err, ErrDecode) {
			t.Fatalf("status %d: expected errors.Is ErrDecode", status)
		}
	}
}

func TestExecuteEmptyValuesAreDecodeErrors(t *testing.T) {
	for _, body := range []string{"", "null", "{}", "[]", "false", "0", `""`} {
		tr := &fakeTransport{body: body}
		_, err := newTestClient(t, tr).Execute(context.Background(), "e", RequestConfig{})
		if !errors.Is(err, ErrDecode) {
			t.Fatalf("body %q: expected decode error, got %v", body, err)
		}
	}
}

func TestExecuteServiceErrorBeforeStatus(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusForbidden} {
		tr := &fakeTransport{status: status, body: `{"response":{"error":"X"}}`}
		_, err := newTestClient(t, tr).Execute(context.Background(), "e", RequestConfig{})
		var svcErr *ServiceError
		if !errors.As(err, &svcErr) {
			t.Fatalf("status %d: expected ServiceError, got %v", status, err)
		}
		if svcErr.Message != "X" {
			t.Fatalf("expected message X, got %q", svcErr.Message)
		}
		if !strings.Contains(err.Error(), "X") {
			t.Fatalf("error text should contain message: %v", err)
		}
	}
}

func TestExecuteSuccessFlagSuppressesServiceError(t *testing.T) {
	tr := &fakeTransport{body: `{"response":{"error":"X","success":true}}`}
	got, err := newTestClient(t, tr).Execute(context.Background(), "e", RequestConfig{Path: Path("response", "error")})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got != "X" {
		t.Fatalf("expected X, got %#v", got)
	}

	tr = &fakeTransport{status: http.StatusBadGateway, body: `{"response":{"error":"X","success":1}}`}
	_, err = newTestClient(t, tr).Execute(context.Background(), "e", RequestConfig{})
	if !errors.Is(err, ErrHTTPStatus) {
		t.Fatalf("expected status error after suppressed service error, got %v", err)
	}
}

func TestExecuteFalsySuccessDoesNotSuppress(t *testing.T) {
	tr := &fakeTransport{body: `{"response":{"error":{"code":42},"success":0}}`}
	_, err := newTestClient(t, tr).Execute(context.Background(), "e", RequestConfig{})
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if svcErr.Message != `{"code":42}` {
		t.Fatalf("unexpected message %q", svcErr.Message)
	}
}

func TestExecuteNullErrorIsIgnored(t *testing.T) {
	tr := &fakeTransport{body: `{"response":{"error":null,"steamid":"1"}}`}
	got, err := newTestClient(t, tr).Execute(context.Background(), "e", RequestConfig{Path: Path("response", "steamid")})
	if err != nil || got != "1" {
		t.Fatalf("expected 1, got %#v err=%v", got, err)
	}
}

func TestExecuteHTTPStatusError(t *testing.T) {
	tr := &fakeTransport{status: http.StatusInternalServerError, body: `{"response":{"players":[]}}`}
	_, err := newTestClient(t, tr).Execute(context.Background(), "e", RequestConfig{})
	var stErr *HTTPStatusError
	if !errors.As(err, &stErr) {
		t.Fatalf("expected HTTPStatusError, got %v", err)
	}
	if stErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", stErr.StatusCode)
	}
}

func TestExecuteHTTPStatusErrorInRawMode(t *testing.T) {
	tr := &fakeTransport{status: http.StatusTooManyRequests, body: "not json"}
	_, err := newTestClient(t, tr).Execute(context.Background(), "e", RequestConfig{Raw: true})
	if !errors.Is(err, ErrHTTPStatus) {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestExecuteWalksPath(t *testing.T) {
	tr := &fakeTransport{body: `{"response":{"players":[{"id":"abc"}]}}`}
	got, err := newTestClient(t, tr).Execute(context.Background(), "e", RequestConfig{Path: Path("response", "players", 0)})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := map[string]any{"id": "abc"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %#v, got %#v", want, got)
	}
}

func TestExecutePathErrorNamesSegment(t *testing.T) {
	tr := &fakeTransport{body: `{"response":{"total":1}}`}
	_, err := newTestClient(t, tr).Execute(context.Background(), "e", RequestConfig{Path: Path("response", "groups")})
	var pathErr *PathError
	if !errors.As(err, &pathErr) {
		t.Fatalf("expected PathError, got %v", err)
	}
	if pathErr.Segment != Key("groups") || pathErr.Position != 1 {
		t.Fatalf("unexpected segment %v at %d", pathErr.Segment, pathErr.Position)
	}
	if !strings.Contains(err.Error(), `"groups"`) {
		t.Fatalf("error should name groups: %v", err)
	}
}

func TestExecutePathEdgeCases(t *testing.T) {
	body := `{"response":{"players":[],"byid":{"7":"seven"},"nothing":null},"list":[1]}`
	cases := []struct {
		name string
		path []Segment
		want any
		pos  int
	}{
		{name: "index out of range", path: Path("response", "players", 0), pos: 2},
		{name: "negative index", path: Path("list", -1), pos: 1},
		{name: "key against array", path: Path("list", "x"), pos: 1},
		{name: "index against object member", path: Path("response", "byid", 7), want: "seven", pos: -1},
		{name: "null member is missing", path: Path("response", "nothing"), pos: 1},
		{name: "descend into scalar", path: Path("list", 0, "x"), pos: 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := &fakeTransport{body: body}
			got, err := newTestClient(t, tr).Execute(context.Background(), "e", RequestConfig{Path: tc.path})
			if tc.pos < 0 {
				if err != nil {
					t.Fatalf("Execute: %v", err)
				}
				if got != tc.want {
					t.Fatalf("expected %#v, got %#v", tc.want, got)
				}
				return
			}
			var pathErr *PathError
			if !errors.As(err, &pathErr) {
				t.Fatalf("expected PathError, got %v", err)
			}
			if pathErr.Position != tc.pos {
				t.Fatalf("expected position %d, got %d", tc.pos, pathErr.Position)
			}
		})
	}
}

func TestExecuteBareArraySkipsServiceCheck(t *testing.T) {
	tr := &fakeTransport{body: `[{"response":{"error":"X"}}]`}
	got, err := newTestClient(t, tr).Execute(context.Background(), "e", RequestConfig{Path: Path(0, "response", "error")})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got != "X" {
		t.Fatalf("expected X, got %#v", got)
	}
}

func TestExecuteKeepsLargeNumbers(t *testing.T) {
	tr := &fakeTransport{body: `{"response":{"steamid":76561197960287930}}`}
	got, err := newTestClient(t, tr).Execute(context.Background(), "e", RequestConfig{Path: Path("response", "steamid")})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if n, ok := got.(json.Number); !ok || n.String() != "76561197960287930" {
		t.Fatalf("expected exact json.Number, got %#v", got)
	}
}

func TestExecuteRawReturnsText(t *testing.T) {
	tr := &fakeTransport{body: `{"success":true}`}
	got, err := newTestClient(t, tr).Execute(context.Background(), "e", RequestConfig{Raw: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got != `{"success":true}` {
		t.Fatalf("expected raw body, got %#v", got)
	}

	_, err = newTestClient(t, tr).Execute(context.Background(), "e", RequestConfig{Raw: true, Path: Path("success")})
	if !errors.Is(err, ErrPath) {
		t.Fatalf("expected path error for raw body with path, got %v", err)
	}
}

func TestExecuteMergesQueryWithInjectedDefaults(t *testing.T) {
	tr := &fakeTransport{body: `{"ok":1}`}
	caller := map[string]string{"steamid": "1", "key": "mine", "format": "xml"}
	if _, err := newTestClient(t, tr).Execute(context.Background(), "e", RequestConfig{Query: caller}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := map[string]string{"steamid": "1", "key": "secret", "format": "json"}
	if got := tr.requests[0].Query; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected query %v, got %v", want, got)
	}
	if caller["key"] != "mine" {
		t.Fatalf("caller query must not be mutated")
	}
}

func TestExecuteSendsEmptyKeyWhenAbsent(t *testing.T) {
	tr := &fakeTransport{body: `{"ok":1}`}
	c, err := New("", tr)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Execute(context.Background(), "e", RequestConfig{}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	q := tr.requests[0].Query
	if v, ok := q["key"]; !ok || v != "" {
		t.Fatalf("expected empty key param, got %v", q)
	}
}

func TestExecuteResolvesEndpoints(t *testing.T) {
	tr := &fakeTransport{body: `{"ok":1}`}
	c := newTestClient(t, tr)
	ctx := context.Background()
	if _, err := c.Execute(ctx, "/ISteamUser/X/v1", RequestConfig{}); err != nil {
		t.Fatalf("Execute relative: %v", err)
	}
	if _, err := c.Execute(ctx, "https://steamcommunity.com/login/getrsakey", RequestConfig{Method: MethodPost}); err != nil {
		t.Fatalf("Execute absolute: %v", err)
	}
	if got := tr.requests[0].URL; got != "https://api.example.test/ISteamUser/X/v1" {
		t.Fatalf("unexpected relative url %q", got)
	}
	if tr.requests[0].Method != http.MethodGet {
		t.Fatalf("expected default GET, got %s", tr.requests[0].Method)
	}
	if got := tr.requests[1].URL; got != "https://steamcommunity.com/login/getrsakey" {
		t.Fatalf("unexpected absolute url %q", got)
	}
	if tr.requests[1].Method != http.MethodPost {
		t.Fatalf("expected POST, got %s", tr.requests[1].Method)
	}
}

func TestExecuteWrapsTransportError(t *testing.T) {
	boom := errors.New("dial failed")
	tr := &fakeTransport{err: boom}
	_, err := newTestClient(t, tr).Execute(context.Background(), "e", RequestConfig{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
	if Kind(err) != "" {
		t.Fatalf("transport error should not map to an executor kind")
	}
	if len(tr.requests) != 1 {
		t.Fatalf("expected exactly one attempt, got %d", len(tr.requests))
	}
}

func TestNewRejectsNilTransport(t *testing.T) {
	if _, err := New("k", nil); err == nil {
		t.Fatal("expected error for nil transport")
	}
}

func TestKind(t *testing.T) {
	cases := map[string]error{
		"decode":      &DecodeError{Endpoint: "e"},
		"service":     &ServiceError{Endpoint: "e", Message: "m"},
		"http_status": &HTTPStatusError{Endpoint: "e", StatusCode: 500},
		"path":        &PathError{Endpoint: "e", Segment: Key("k")},
	}
	for want, err := range cases {
		if got := Kind(err); got != want {
			t.Errorf("Kind(%T) = %q, want %q", err, got, want)
		}
	}
}

// ABOUTME: Tests for the remote-control server
// ABOUTME: Drives HTTP routes and websocket commands against a faked controller
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Resonate-Protocol/volumekit/internal/platformtest"
	"github.com/Resonate-Protocol/volumekit/pkg/volume"
)

func newTestServer(t *testing.T) (*Server, *volume.Controller, *platformtest.Element, *httptest.Server) {
	t.Helper()
	return newTestServerWith(t, platformtest.NewElement())
}

func newTestServerWith(t *testing.T, el *platformtest.Element) (*Server, *volume.Controller, *platformtest.Element, *httptest.Server) {
	t.Helper()

	ctrl, err := volume.New(el, &platformtest.Provider{Graph: true}, volume.Config{})
	if err != nil {
		t.Fatalf("failed to create controller: %v", err)
	}
	t.Cleanup(ctrl.Destroy)

	srv, err := New(Config{Name: "test", Version: "1.0", Player: ctrl})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return srv, ctrl, el, ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()

	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestNewRequiresPlayer(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error without player")
	}
}

func TestStatus(t *testing.T) {
	_, _, _, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var status StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode status: %v", err)
	}
	if status.Name != "test" || status.Version != "1.0" {
		t.Errorf("unexpected identity %q %q", status.Name, status.Version)
	}
	if status.State.Volume != 50 {
		t.Errorf("expected volume 50, got %d", status.State.Volume)
	}
	if status.State.Phase != "idle" {
		t.Errorf("expected idle phase, got %q", status.State.Phase)
	}
}

func TestPostVolume(t *testing.T) {
	_, ctrl, _, ts := newTestServer(t)

	resp := post(t, ts.URL+"/volume", `{"volume": 30}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ctrl.Volume() != 30 {
		t.Errorf("expected volume 30, got %d", ctrl.Volume())
	}

	var state State
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("failed to decode state: %v", err)
	}
	if state.Volume != 30 {
		t.Errorf("expected state volume 30, got %d", state.Volume)
	}
}

func TestPostVolumeRejectsInvalid(t *testing.T) {
	_, ctrl, _, ts := newTestServer(t)

	for _, body := range []string{`{"volume": 150}`, `{}`, `not json`} {
		resp := post(t, ts.URL+"/volume", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, resp.StatusCode)
		}
	}
	if ctrl.Volume() != 50 {
		t.Errorf("expected volume unchanged, got %d", ctrl.Volume())
	}
}

func TestPostPlayAndPause(t *testing.T) {
	_, _, el, ts := newTestServer(t)

	if resp := post(t, ts.URL+"/play", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from play, got %d", resp.StatusCode)
	}
	if resp := post(t, ts.URL+"/pause", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from pause, got %d", resp.StatusCode)
	}

	calls := el.Calls()
	if len(calls) != 2 || calls[0] != "play" || calls[1] != "pause" {
		t.Errorf("expected [play pause], got %v", calls)
	}
}

func TestPostPlayFailure(t *testing.T) {
	el := platformtest.NewElement()
	el.PlayErr = errors.New("NotAllowedError")
	_, _, _, ts := newTestServerWith(t, el)

	resp := post(t, ts.URL+"/play", "")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}

	var payload ErrorPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if !strings.Contains(payload.Message, "NotAllowedError") {
		t.Errorf("expected cause in message, got %q", payload.Message)
	}
}

func TestPostMute(t *testing.T) {
	_, ctrl, _, ts := newTestServer(t)

	if resp := post(t, ts.URL+"/mute", `{"muted": true}`); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !ctrl.Muted() {
		t.Error("expected muted controller")
	}
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	return msg
}

func sendMessage(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()

	data, err := encode(msgType, payload)
	if err != nil {
		t.Fatalf("failed to encode: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
}

func TestWebSocketHelloAndState(t *testing.T) {
	_, _, _, ts := newTestServer(t)
	conn := dial(t, ts)

	hello := readMessage(t, conn)
	if hello.Type != TypeHello {
		t.Fatalf("expected hello, got %s", hello.Type)
	}
	var h Hello
	if err := json.Unmarshal(hello.Payload, &h); err != nil {
		t.Fatalf("failed to decode hello: %v", err)
	}
	if h.SessionID == "" || h.Name != "test" {
		t.Errorf("unexpected hello %+v", h)
	}

	if msg := readMessage(t, conn); msg.Type != TypeState {
		t.Errorf("expected initial state, got %s", msg.Type)
	}
}

func TestWebSocketCommands(t *testing.T) {
	_, ctrl, _, ts := newTestServer(t)
	conn := dial(t, ts)
	readMessage(t, conn) // hello
	readMessage(t, conn) // state

	v := 20.0
	sendMessage(t, conn, TypeVolumeSet, VolumeSet{Volume: &v})

	msg := readMessage(t, conn)
	if msg.Type != TypeState {
		t.Fatalf("expected state, got %s", msg.Type)
	}
	var state State
	if err := json.Unmarshal(msg.Payload, &state); err != nil {
		t.Fatalf("failed to decode state: %v", err)
	}
	if state.Volume != 20 {
		t.Errorf("expected pushed volume 20, got %d", state.Volume)
	}

	sendMessage(t, conn, TypeVolumeStep, VolumeStep{Delta: 5})
	readMessage(t, conn)
	if ctrl.Volume() != 25 {
		t.Errorf("expected volume 25 after step, got %d", ctrl.Volume())
	}

	sendMessage(t, conn, TypeMute, MuteSet{Muted: true})
	readMessage(t, conn)
	if !ctrl.Muted() {
		t.Error("expected muted controller")
	}
}

func TestWebSocketErrors(t *testing.T) {
	_, _, _, ts := newTestServer(t)
	conn := dial(t, ts)
	readMessage(t, conn)
	readMessage(t, conn)

	sendMessage(t, conn, "rewind", nil)
	msg := readMessage(t, conn)
	if msg.Type != TypeError {
		t.Fatalf("expected error, got %s", msg.Type)
	}

	var payload ErrorPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if payload.Request != "rewind" {
		t.Errorf("expected request echo, got %q", payload.Request)
	}

	sendMessage(t, conn, TypeVolumeSet, nil)
	if msg := readMessage(t, conn); msg.Type != TypeError {
		t.Errorf("expected error for missing payload, got %s", msg.Type)
	}
}

func TestHTTPChangesArePushed(t *testing.T) {
	srv, _, _, ts := newTestServer(t)
	conn := dial(t, ts)
	readMessage(t, conn)
	readMessage(t, conn)

	deadline := time.Now().Add(2 * time.Second)
	for srv.Sessions() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	post(t, ts.URL+"/volume", `{"volume": 70}`)

	msg := readMessage(t, conn)
	var state State
	if err := json.Unmarshal(msg.Payload, &state); err != nil {
		t.Fatalf("failed to decode state: %v", err)
	}
	if state.Volume != 70 {
		t.Errorf("expected pushed volume 70, got %d", state.Volume)
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ctrl, err := volume.New(platformtest.NewElement(), &platformtest.Provider{}, volume.Config{})
	if err != nil {
		t.Fatalf("failed to create controller: %v", err)
	}
	defer ctrl.Destroy()

	srv, err := New(Config{Addr: "127.0.0.1:0", Player: ctrl})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for srv.Addr() == nil && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if srv.Addr() == nil {
		t.Fatal("server did not start listening")
	}

	resp, err := http.Get("http://" + srv.Addr().String() + "/status")
	if err != nil {
		t.Fatalf("GET /status failed: %v", err)
	}
	resp.Body.Close()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

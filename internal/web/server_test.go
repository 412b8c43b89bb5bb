package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/rc-lights/internal/logic"
	"github.com/sweeney/rc-lights/internal/status"
)

const testRoles = `{"inputs":[17],"roles":[]}`

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		TickMs:       10,
		TimeoutMs:    500,
		HeartbeatMs:  900000,
		Broker:       "tcp://192.168.1.200:1883",
		HTTPAddr:     ":80",
		GlitchFilter: true,
		ValidLow:     900,
		ValidHigh:    2100,
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr, []byte(testRoles))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, tr
}

func liveFrame() logic.Frame {
	return logic.Frame{
		Mode: logic.ModeLive,
		Commands: []logic.Command{
			{Actuator: "brightness", Kind: logic.KindLevel, Level: 128},
			{Actuator: "color", Kind: logic.KindRGB, RGB: logic.RGB{R: 255, G: 128}},
			{Actuator: "power", Kind: logic.KindBinary, On: true},
		},
	}
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(liveFrame(), logic.HealthValid, logic.Counts{Ticks: 42, FailsafeEntries: 1},
		[]status.ChannelInfo{{Width: 1500, Captured: true, Fresh: true, Accepted: 10, Rejected: 2}})
	tr.SetMQTTConnected(true)

	resp, body := get(t, ts.URL+"/index.json")
	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.Unmarshal([]byte(body), &sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if sj.Status.Mode != "LIVE" || sj.Status.Health != "VALID" {
		t.Errorf("mode/health: got %s/%s", sj.Status.Mode, sj.Status.Health)
	}
	if !sj.Status.MQTT.Connected || sj.Status.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("mqtt: %+v", sj.Status.MQTT)
	}
	if len(sj.Status.Channels) != 1 || sj.Status.Channels[0].Rejected != 2 {
		t.Errorf("channels: %+v", sj.Status.Channels)
	}
	if len(sj.Status.Commands) != 3 {
		t.Errorf("commands: %+v", sj.Status.Commands)
	}
	if sj.Status.Counts.Ticks != 42 {
		t.Errorf("Counts.Ticks: got %d, want 42", sj.Status.Counts.Ticks)
	}
	if sj.Status.Config.TimeoutMs != 500 {
		t.Errorf("Config.TimeoutMs: got %d, want 500", sj.Status.Config.TimeoutMs)
	}
}

func TestJSONUnknownBeforeFirstTick(t *testing.T) {
	ts, _ := newTestServer(t)

	_, body := get(t, ts.URL+"/index.json")
	var sj status.StatusJSON
	json.Unmarshal([]byte(body), &sj)

	if sj.Status.Mode != "UNKNOWN" {
		t.Errorf("Mode before first tick: got %q, want UNKNOWN", sj.Status.Mode)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(liveFrame(), logic.HealthValid, logic.Counts{},
		[]status.ChannelInfo{{Width: 1234, Captured: true, Fresh: true}})

	resp, body := get(t, ts.URL+"/")
	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}
	for _, want := range []string{"LIVE", "1234µs", "128 / 255", "(255, 128, 0)", "#ff8000", "900-2100µs", "not connected", "900000ms"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestHTMLShowsFailing(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(logic.Frame{Mode: logic.ModeFailsafe}, logic.HealthLost, logic.Counts{}, nil)
	tr.SetFailing([]string{"color", "power"})

	_, body := get(t, ts.URL+"/index.html")
	if !strings.Contains(body, "FAILSAFE") {
		t.Error("page should show FAILSAFE")
	}
	if !strings.Contains(body, "color, power") {
		t.Error("page should list failing actuators")
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, _ := get(t, ts.URL+"/nonexistent")
	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestRolesEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, body := get(t, ts.URL+"/roles.json")
	if resp.StatusCode != 200 || body != testRoles {
		t.Errorf("got %d %q", resp.StatusCode, body)
	}
}

func TestRolesEndpointWithoutTable(t *testing.T) {
	srv := New(":0", status.NewTracker(time.Now(), status.Config{}), nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/roles.json", nil))
	if rec.Code != 404 {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)

	resp, body := get(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusServiceUnavailable || body != "STARTING\n" {
		t.Errorf("before first tick: got %d %q", resp.StatusCode, body)
	}

	tr.Update(liveFrame(), logic.HealthValid, logic.Counts{}, nil)
	resp, body = get(t, ts.URL+"/healthz")
	if resp.StatusCode != 200 || body != "LIVE\n" {
		t.Errorf("live: got %d %q", resp.StatusCode, body)
	}

	tr.Update(logic.Frame{Mode: logic.ModeFailsafe}, logic.HealthLost, logic.Counts{}, nil)
	resp, body = get(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusServiceUnavailable || body != "FAILSAFE\n" {
		t.Errorf("failsafe: got %d %q", resp.StatusCode, body)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t)

	tr.Update(liveFrame(), logic.HealthValid, logic.Counts{}, nil)
	_, body := get(t, ts.URL+"/index.json")
	var sj1 status.StatusJSON
	json.Unmarshal([]byte(body), &sj1)
	if sj1.Status.Mode != "LIVE" {
		t.Errorf("expected LIVE, got %s", sj1.Status.Mode)
	}

	tr.Update(logic.Frame{Mode: logic.ModeFailsafe}, logic.HealthLost, logic.Counts{FailsafeEntries: 1}, nil)
	_, body = get(t, ts.URL+"/index.json")
	var sj2 status.StatusJSON
	json.Unmarshal([]byte(body), &sj2)
	if sj2.Status.Mode != "FAILSAFE" || sj2.Status.Counts.FailsafeEntries != 1 {
		t.Errorf("expected FAILSAFE with one entry, got %s/%d", sj2.Status.Mode, sj2.Status.Counts.FailsafeEntries)
	}
}

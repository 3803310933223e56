package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/longbridgeapp/assert"

	"github.com/hyp3rd/timewatch"
	"github.com/hyp3rd/timewatch/monitor"
	"github.com/hyp3rd/timewatch/stats"
)

// TestManagementHTTP_BasicEndpoints spins up the management HTTP server on an
// ephemeral port and validates core endpoints.
func TestManagementHTTP_BasicEndpoints(t *testing.T) {
	registry := monitor.NewRegistry()

	ma := monitor.NewMonitorAppender(
		monitor.WithMonitorName("webMonitor"),
		monitor.WithTagNamesToExpose("dbCall"),
		monitor.WithNotificationThresholds("dbCallMean(<100)"),
		monitor.WithRegistry(registry),
	)

	ctx := context.Background()

	err := ma.Start()
	assert.Nil(t, err)
	defer ma.Stop(ctx)

	start := time.Now().Add(-30 * time.Second)
	slice := stats.NewGrouped(start)
	slice.AddSample("dbCall", 10*time.Millisecond)
	slice.AddSample("dbCall", 20*time.Millisecond)
	slice.Seal(time.Now())

	err = ma.Append(ctx, slice)
	assert.Nil(t, err)

	srv := timewatch.NewManagementHTTPServer("127.0.0.1:0")

	err = srv.Start(ctx, registry)
	assert.Nil(t, err)
	defer srv.Shutdown(ctx)

	// wait briefly for listener
	time.Sleep(30 * time.Millisecond)

	addr := srv.Address()
	assert.True(t, addr != "")

	client := &http.Client{Timeout: 2 * time.Second}

	// /healthz
	resp, err := client.Get("http://" + addr + "/healthz")
	assert.Nil(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	// /monitors
	resp, err = client.Get("http://" + addr + "/monitors")
	assert.Nil(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var monitorsBody map[string][]string

	dec := json.NewDecoder(resp.Body)
	err = dec.Decode(&monitorsBody)
	assert.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, []string{"webMonitor"}, monitorsBody["monitors"])

	// /monitors/:name/attributes
	resp, err = client.Get("http://" + addr + "/monitors/webMonitor/attributes")
	assert.Nil(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var attrs map[string]float64

	dec = json.NewDecoder(resp.Body)
	err = dec.Decode(&attrs)
	assert.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, float64(15), attrs["dbCallMean"])
	assert.Equal(t, float64(2), attrs["dbCallCount"])

	// /monitors/:name/thresholds
	resp, err = client.Get("http://" + addr + "/monitors/webMonitor/thresholds")
	assert.Nil(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var thresholds map[string][]string

	dec = json.NewDecoder(resp.Body)
	err = dec.Decode(&thresholds)
	assert.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, []string{"dbCallMean(<100)"}, thresholds["thresholds"])

	// unknown monitor
	resp, err = client.Get("http://" + addr + "/monitors/nope/attributes")
	assert.Nil(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

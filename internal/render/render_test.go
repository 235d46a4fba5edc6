package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/contact-graph-router/model"
)

func foundRoute() model.Route {
	return model.Route{ContactIDs: []int{0, 1}, Hops: 2, ETA: 10.34, Found: true}
}

func TestWriteRouteJSONCompact(t *testing.T) {
	var buf bytes.Buffer
	r := foundRoute()
	require.NoError(t, WriteRouteJSON(&buf, &r, 0, false))

	assert.Equal(t,
		`{"found":true,"eta":10.340000,"latency":10.340000,"hops":2,"contacts":[0,1]}`+"\n",
		buf.String())
}

func TestWriteRouteJSONNotFound(t *testing.T) {
	var buf bytes.Buffer
	r := model.Route{}
	require.NoError(t, WriteRouteJSON(&buf, &r, 0, false))
	assert.Equal(t, `{"found":false}`+"\n", buf.String())
}

func TestWriteRouteJSONPretty(t *testing.T) {
	var buf bytes.Buffer
	r := foundRoute()
	require.NoError(t, WriteRouteJSON(&buf, &r, 2.5, true))

	out := buf.String()
	assert.Contains(t, out, "\n")
	assert.Contains(t, out, `"eta": 10.340000`)
	assert.Contains(t, out, `"latency": 7.840000`)
}

func TestWriteRouteSetJSON(t *testing.T) {
	var buf bytes.Buffer
	rs := model.RouteSet{Routes: []model.Route{
		foundRoute(),
		{ContactIDs: []int{2, 3}, Hops: 2, ETA: 11.12, Found: true},
	}}
	require.NoError(t, WriteRouteSetJSON(&buf, &rs, 0, false))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `{"found":true,"routes":[`))
	assert.Contains(t, out, `"contacts":[2,3]`)
}

func TestWriteRouteSetJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	rs := model.RouteSet{}
	require.NoError(t, WriteRouteSetJSON(&buf, &rs, 0, false))
	assert.Equal(t, `{"found":false,"routes":[]}`+"\n", buf.String())
}

func TestWriteRouteText(t *testing.T) {
	var buf bytes.Buffer
	r := foundRoute()
	WriteRouteText(&buf, &r, 0)

	out := buf.String()
	assert.Contains(t, out, "eta: 10.340 s")
	assert.Contains(t, out, "hops: 2")
	assert.Contains(t, out, "0 -> 1")

	buf.Reset()
	missing := model.Route{}
	WriteRouteText(&buf, &missing, 0)
	assert.Contains(t, buf.String(), "no route found")
}

func TestWriteRouteSetTextStats(t *testing.T) {
	var buf bytes.Buffer
	rs := model.RouteSet{Routes: []model.Route{
		foundRoute(),
		{ContactIDs: []int{2, 3}, Hops: 2, ETA: 11.12, Found: true},
	}}
	WriteRouteSetText(&buf, &rs, 0, "alternatives")

	out := buf.String()
	assert.Contains(t, out, "alternatives")
	assert.Contains(t, out, "routes: 2")
	assert.Contains(t, out, "eta min/avg/max: 10.340/10.730/11.120 s")
	assert.Contains(t, out, "spread: 0.780 s")
	assert.Contains(t, out, "#2 eta=11.120 s")
	assert.Contains(t, out, "2 -> 3")
}

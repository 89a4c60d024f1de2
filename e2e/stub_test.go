//go:build e2e && unix

package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

const stubLondon = `[
  {"place_id":1,"osm_type":"relation","osm_id":65606,"lat":"51.5073219","lon":"-0.1276474","class":"boundary","type":"administrative","display_name":"London, UK","boundingbox":[]},
  {"place_id":2,"lat":"42.98","lon":"-81.24","class":"place","type":"city","display_name":"London, Ontario, Canada","boundingbox":[]}
]`

// nominatimStub answers every query starting with "Lon" with two Londons,
// "fail" with a server error and anything else with no results.
type nominatimStub struct {
	*httptest.Server
	requests atomic.Int32
}

func newNominatimStub(t *testing.T) *nominatimStub {
	t.Helper()
	stub := &nominatimStub{}
	stub.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.requests.Add(1)
		q := r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(q, "Lon"):
			_, _ = w.Write([]byte(stubLondon))
		case q == "fail":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	t.Cleanup(stub.Close)
	return stub
}

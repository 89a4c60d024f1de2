//go:build e2e && unix

package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startForm(t *testing.T, stub *nominatimStub) *TUITestFramework {
	t.Helper()
	tf := NewTUITest(t)
	t.Cleanup(tf.Cleanup)

	tf.Setenv("GEOSEARCH_SEARCH_ENDPOINT", stub.URL)
	tf.Setenv("GEOSEARCH_SEARCH_DEBOUNCE", "50ms")
	require.NoError(t, tf.StartApp())
	require.True(t, tf.Ready(), "form should render")
	return tf
}

func TestTypingShowsResults(t *testing.T) {
	t.Parallel()
	stub := newNominatimStub(t)
	tf := startForm(t, stub)

	require.NoError(t, tf.Type("Lon"))
	require.NoError(t, tf.WaitForE(func(string) bool {
		return containsPlain(tf, "London, UK") && containsPlain(tf, "London, Ontario, Canada")
	}, 5*time.Second, "results should appear"))
	require.EqualValues(t, 1, stub.requests.Load(), "one request per debounce window")
}

func TestShortQueryDoesNotSearch(t *testing.T) {
	t.Parallel()
	stub := newNominatimStub(t)
	tf := startForm(t, stub)

	require.NoError(t, tf.Type("Lo"))
	time.Sleep(300 * time.Millisecond)
	require.Zero(t, stub.requests.Load())
}

func TestSelectionIsPrintedOnExit(t *testing.T) {
	t.Parallel()
	stub := newNominatimStub(t)
	tf := startForm(t, stub)

	require.NoError(t, tf.Type("Lon"))
	require.True(t, tf.OutputContainsPlain("London, UK", 5*time.Second))

	require.NoError(t, tf.Down())
	require.NoError(t, tf.SendEnter())
	require.True(t, tf.SeePlain("Selected London, UK"))

	require.NoError(t, tf.SendCtrlC())
	require.NoError(t, tf.WaitExit(3*time.Second))
	require.True(t, tf.OutputContainsPlain(`"display_name": "London, UK"`, time.Second))
}

func TestEmptyResultShowsMessage(t *testing.T) {
	t.Parallel()
	stub := newNominatimStub(t)
	tf := startForm(t, stub)

	require.NoError(t, tf.Type("Atlantis"))
	require.True(t, tf.OutputContainsPlain("No locations found", 5*time.Second))
}

func TestFailureShownInStatusLine(t *testing.T) {
	t.Parallel()
	stub := newNominatimStub(t)
	tf := startForm(t, stub)

	require.NoError(t, tf.Type("fail"))
	require.True(t, tf.OutputContainsPlain(`Search for "fail" failed`, 5*time.Second))
}

func TestCtrlCExits(t *testing.T) {
	t.Parallel()
	stub := newNominatimStub(t)
	tf := startForm(t, stub)

	require.NoError(t, tf.SendCtrlC())
	require.NoError(t, tf.WaitExit(3*time.Second))
}

func containsPlain(tf *TUITestFramework, text string) bool {
	return strings.Contains(tf.SnapshotPlain(), text)
}

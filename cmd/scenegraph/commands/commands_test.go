package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sglog "github.com/scenegraph-protocol/scenegraph-go/pkg/log"
	"github.com/scenegraph-protocol/scenegraph-go/pkg/reducer"
)

const (
	sceneFile  = "testdata/scene.yaml"
	eventsFile = "testdata/events.yaml"
)

func TestRunTree(t *testing.T) {
	var buf bytes.Buffer
	err := RunTree(context.Background(), Source{Scene: sceneFile}, TreeOptions{ShowMetadata: true}, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Scene/\n")
	assert.Contains(t, out, "  Earth/ [tags: planet]\n")
	assert.Contains(t, out, "    Is Enabled = true (BoolProperty)\n")
	assert.Contains(t, out, "      Opacity = 0.75\n")
}

func TestRunTreeRoot(t *testing.T) {
	var buf bytes.Buffer
	err := RunTree(context.Background(), Source{Scene: sceneFile}, TreeOptions{Root: "Scene.Earth.Renderable"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, "Renderable/\n  Opacity = 0.75\n", buf.String())

	err = RunTree(context.Background(), Source{}, TreeOptions{}, &buf)
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestRunGet(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, RunGet(ctx, Source{Scene: sceneFile}, "NavigationHandler.Anchor", false, &buf))
	assert.Equal(t, "\"Earth\"\n", buf.String())

	buf.Reset()
	require.NoError(t, RunGet(ctx, Source{Scene: sceneFile}, "Scene.Earth.Enabled", true, &buf))
	assert.JSONEq(t, `{"id":"Enabled","name":"Is Enabled","type":"BoolProperty","value":true}`, buf.String())

	err := RunGet(ctx, Source{Scene: sceneFile}, "Scene.Earth.Nope", false, &buf)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRunReplayWithLogAndSnapshot(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "run.sglog")
	snapPath := filepath.Join(dir, "tree.cbor")

	var buf bytes.Buffer
	result, err := RunReplay(context.Background(), ReplayOptions{
		Source:       Source{Scene: sceneFile},
		Scripts:      []string{eventsFile},
		LogPath:      logPath,
		SnapshotPath: snapPath,
	}, &buf)
	require.NoError(t, err)

	// Scene.Mars does not exist when the second event arrives.
	assert.Equal(t, 3, result.Events)
	assert.Equal(t, 2, result.Applied)
	assert.Equal(t, uint64(4), result.Sequence)
	assert.Contains(t, buf.String(), "  Mars/\n")
	assert.Contains(t, buf.String(), "3 events, 2 applied, sequence 4")

	// The log holds the scene build and the script.
	reader, err := sglog.NewReader(logPath)
	require.NoError(t, err)
	events, err := reader.ReadAll()
	require.NoError(t, reader.Close())
	require.NoError(t, err)
	require.Len(t, events, 5)
	assert.Equal(t, sglog.OutcomeUnchanged, events[3].Outcome)
	assert.Equal(t, "Scene.Mars", events[3].URI)

	// The snapshot reproduces the final tree.
	var fromSnap bytes.Buffer
	require.NoError(t, RunGet(context.Background(), Source{Snapshot: snapPath}, "Scene.Mars.Enabled", false, &fromSnap))
	assert.Equal(t, "false\n", fromSnap.String())

	var tree bytes.Buffer
	require.NoError(t, RunTree(context.Background(), Source{Snapshot: snapPath}, TreeOptions{ShowMetadata: true}, &tree))
	// Listener counts are not restored; no handle could release them.
	assert.Contains(t, tree.String(), "Earth/ [tags: planet]\n")
	assert.NotContains(t, tree.String(), "listeners:")
}

func TestRunReplayInvalidScript(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("events:\n  - type: STOP_LISTENING\n"), 0644))

	_, err := RunReplay(context.Background(), ReplayOptions{Scripts: []string{bad}, Quiet: true}, &bytes.Buffer{})
	assert.ErrorIs(t, err, reducer.ErrMissingURI)
}

func TestRunReplayMissingSnapshot(t *testing.T) {
	_, err := RunReplay(context.Background(), ReplayOptions{
		Source:  Source{Snapshot: filepath.Join(t.TempDir(), "none.json")},
		Scripts: []string{eventsFile},
	}, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestRunLog(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run.sglog")
	_, err := RunReplay(context.Background(), ReplayOptions{
		Source:  Source{Scene: sceneFile},
		Scripts: []string{eventsFile},
		LogPath: logPath,
		Quiet:   true,
	}, &bytes.Buffer{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RunLog(logPath, sglog.Filter{}, LogFormatText, &buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "UPDATE_PROPERTY")
	assert.Contains(t, lines[0], "properties=2")
	assert.Contains(t, lines[2], "listeners=1")

	unchanged := sglog.OutcomeUnchanged
	buf.Reset()
	require.NoError(t, RunLog(logPath, sglog.Filter{Outcome: &unchanged}, LogFormatJSONL, &buf))
	lines = strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"uri":"Scene.Mars"`)
	assert.Contains(t, lines[0], `"outcome":"UNCHANGED"`)

	err = RunLog(filepath.Join(t.TempDir(), "missing.sglog"), sglog.Filter{}, LogFormatText, &buf)
	assert.Error(t, err)
}

func TestParseFlags(t *testing.T) {
	typ, err := ParseTypeFlag("start_listening")
	require.NoError(t, err)
	assert.Equal(t, reducer.EventStartListening, typ)

	_, err = ParseTypeFlag("bogus")
	assert.Error(t, err)

	o, err := ParseOutcomeFlag("Rejected")
	require.NoError(t, err)
	assert.Equal(t, sglog.OutcomeRejected, o)

	_, err = ParseOutcomeFlag("maybe")
	assert.Error(t, err)
}

func TestRunConvert(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RunConvert("testdata/envelopes.json", false, &buf))
	assert.JSONEq(t, `[{"points":[{"color":"red","position":{"x":10,"y":550}}],"height":600,"width":800}]`, buf.String())

	buf.Reset()
	require.NoError(t, RunConvert("testdata/envelopes.json", true, &buf))
	assert.True(t, strings.HasPrefix(buf.String(), `{"points":[{`), buf.String())
}

func TestRunLua(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RunLua("Scene.Earth.Renderable.Opacity", "0.5", &buf))
	assert.Equal(t, "openspace.setPropertyValueSingle(\"Scene.Earth.Renderable.Opacity\", 0.5)\n", buf.String())

	err := RunLua("Scene.X", "{not json", &buf)
	assert.Error(t, err)
}

func TestSourceErrors(t *testing.T) {
	var buf bytes.Buffer
	err := RunTree(context.Background(), Source{Scene: "testdata/missing.yaml"}, TreeOptions{}, &buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRunReplayRecord(t *testing.T) {
	dir := t.TempDir()
	record := filepath.Join(dir, "events.cbor")

	first, err := RunReplay(context.Background(), ReplayOptions{
		Source:     Source{Scene: sceneFile},
		Scripts:    []string{eventsFile},
		RecordPath: record,
		Quiet:      true,
	}, &bytes.Buffer{})
	require.NoError(t, err)

	// Replaying the binary recording gives the same result.
	second, err := RunReplay(context.Background(), ReplayOptions{
		Source:  Source{Scene: sceneFile},
		Scripts: []string{record},
		Quiet:   true,
	}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

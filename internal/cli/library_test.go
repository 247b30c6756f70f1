package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/shotsearch/pkg/client"
)

func TestListCmd_Table(t *testing.T) {
	srv := &fakeServer{}
	url := srv.start(t)

	out, err := executeCmd(t, "--server", url, "list")

	require.NoError(t, err)
	assert.Contains(t, out, "FILENAME")
	assert.Contains(t, out, "settings.png")
	assert.Contains(t, out, "2.0 KiB")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "2 screenshot(s)")
	assert.Less(t, strings.Index(out, "settings.png"), strings.Index(out, "login.png"), "server order is kept")
}

func TestListCmd_JSON(t *testing.T) {
	srv := &fakeServer{}
	url := srv.start(t)

	out, err := executeCmd(t, "--server", url, "list", "--json")

	require.NoError(t, err)
	var shots []client.Screenshot
	require.NoError(t, json.Unmarshal([]byte(out), &shots))
	require.Len(t, shots, 2)
	assert.Equal(t, "shot-2", shots[0].ID)
}

func TestWriteScreenshotTable_Empty(t *testing.T) {
	var buf strings.Builder
	writeScreenshotTable(&buf, nil, fixedNow)
	assert.Equal(t, "No screenshots yet.\n", buf.String())
}

func TestDeleteCmd(t *testing.T) {
	srv := &fakeServer{}
	url := srv.start(t)

	out, err := executeCmd(t, "--server", url, "delete", "shot-1")

	require.NoError(t, err)
	assert.Contains(t, out, "✓ deleted shot-1")
	assert.Equal(t, []string{"shot-1"}, srv.deleted)
}

func TestDeleteCmd_PartialFailure(t *testing.T) {
	srv := &fakeServer{}
	url := srv.start(t)

	out, err := executeCmd(t, "--server", url, "delete", "missing", "shot-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 delete(s) failed")
	assert.Contains(t, out, "✗ missing:")
	assert.Contains(t, out, "Screenshot not found")
	assert.Equal(t, []string{"shot-1"}, srv.deleted, "later ids are still deleted")
}

func TestStatsCmd(t *testing.T) {
	srv := &fakeServer{}
	url := srv.start(t)

	out, err := executeCmd(t, "--server", url, "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "Screenshots:   1,234")
	assert.Contains(t, out, "Storage used:  5.0 MiB")
	assert.Contains(t, out, "completed:")
	assert.Less(t, strings.Index(out, "completed:"), strings.Index(out, "pending:"), "statuses are sorted")
	assert.Contains(t, out, "Avg response:  12.5 ms")
}

func TestStatsCmd_JSON(t *testing.T) {
	srv := &fakeServer{}
	url := srv.start(t)

	out, err := executeCmd(t, "--server", url, "stats", "--json")

	require.NoError(t, err)
	var st client.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, int64(99), st.TotalSearches)
}

func TestVersionCmd(t *testing.T) {
	old := version
	version = "1.2.3"
	defer func() { version = old }()

	out, err := executeCmd(t, "version")

	require.NoError(t, err)
	assert.Equal(t, "shotctl version 1.2.3\n", out)
}

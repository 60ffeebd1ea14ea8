package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gauntlet/internal/domain"
)

// runCommand executes one CLI invocation against a shared temp
// workspace and decodes the JSON envelope.
func runCommand(t *testing.T, configPath string, args ...string) (Response, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", configPath, "--format", "json"}, args...))
	err := cmd.Execute()

	var resp Response
	if out.Len() > 0 {
		require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	}
	return resp, err
}

func writeWorkspaceConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	fixtures, err := filepath.Abs(filepath.Join("..", "judge", "testdata", "fixtures"))
	require.NoError(t, err)

	body := fmt.Sprintf(`data:
  documentPath: %s
  catalogPath: %s
judges:
  fixtureDir: %s
`, filepath.Join(dir, "state.json"), filepath.Join(dir, "catalog.db"), fixtures)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func decodeData(t *testing.T, resp Response, out any) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestEndToEnd_FixtureWorkspace(t *testing.T) {
	cfg := writeWorkspaceConfig(t)

	resp, err := runCommand(t, cfg, "cache", "refresh")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)

	resp, err = runCommand(t, cfg, "user", "create", "--username", "alice", "--cf", "alice_cf", "--atcoder", "alice_at")
	require.NoError(t, err)
	var user domain.User
	decodeData(t, resp, &user)
	require.NotEmpty(t, user.ID)

	resp, err = runCommand(t, cfg, "contest", "create",
		"--owner", user.ID, "--name", "warmup", "--count", "2", "--seed", "cli-seed")
	require.NoError(t, err)
	var contest domain.Contest
	decodeData(t, resp, &contest)
	require.Len(t, contest.Problems, 2)
	assert.Equal(t, domain.StatusCreated, contest.Status)

	// same seed and filters reproduce the same draw
	resp, err = runCommand(t, cfg, "contest", "create",
		"--owner", user.ID, "--name", "warmup again", "--count", "2", "--seed", "cli-seed")
	require.NoError(t, err)
	var again domain.Contest
	decodeData(t, resp, &again)
	assert.Equal(t, contest.Problems, again.Problems)

	resp, err = runCommand(t, cfg, "contest", "list", "--owner", user.ID)
	require.NoError(t, err)
	var contests []domain.Contest
	decodeData(t, resp, &contests)
	assert.Len(t, contests, 2)

	resp, err = runCommand(t, cfg, "contest", "start", "--owner", user.ID, contest.ID)
	require.NoError(t, err)
	decodeData(t, resp, &contest)
	assert.Equal(t, domain.StatusRunning, contest.Status)

	resp, err = runCommand(t, cfg, "leaderboard")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
}

func TestEndToEnd_ErrorEnvelopeCarriesDomainCode(t *testing.T) {
	cfg := writeWorkspaceConfig(t)

	resp, err := runCommand(t, cfg, "contest", "start", "--owner", "nobody", "missing-id")
	require.Error(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(domain.ErrCodeNotFound), resp.Error.Code)
}

func TestEndToEnd_RoomFlow(t *testing.T) {
	cfg := writeWorkspaceConfig(t)

	_, err := runCommand(t, cfg, "cache", "refresh")
	require.NoError(t, err)

	resp, err := runCommand(t, cfg, "user", "create", "--username", "host", "--cf", "host_cf")
	require.NoError(t, err)
	var host domain.User
	decodeData(t, resp, &host)

	resp, err = runCommand(t, cfg, "user", "create", "--username", "guest", "--atcoder", "guest_at")
	require.NoError(t, err)
	var guest domain.User
	decodeData(t, resp, &guest)

	resp, err = runCommand(t, cfg, "room", "create",
		"--owner", host.ID, "--name", "duel", "--count", "2", "--seed", "room-seed")
	require.NoError(t, err)
	var room domain.Room
	decodeData(t, resp, &room)
	require.NotEmpty(t, room.InviteCode)

	resp, err = runCommand(t, cfg, "room", "join", "--user", guest.ID, room.InviteCode)
	require.NoError(t, err)
	decodeData(t, resp, &room)
	assert.Len(t, room.Members, 2)

	resp, err = runCommand(t, cfg, "room", "start", "--user", host.ID, room.ID)
	require.NoError(t, err)
	decodeData(t, resp, &room)
	assert.Equal(t, domain.StatusRunning, room.Status)

	resp, err = runCommand(t, cfg, "room", "scoreboard", "--user", guest.ID, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
}

func TestConfigValidateCommand(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("log:\n  level: shouty\n"), 0o644))

	resp, err := runCommand(t, "", "config", "validate", bad)
	require.Error(t, err)
	assert.Equal(t, "error", resp.Status)

	resp, err = runCommand(t, "", "config", "validate")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
}

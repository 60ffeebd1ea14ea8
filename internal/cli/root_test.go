package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gauntlet/internal/domain"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "gauntlet", cmd.Use)
	assert.Contains(t, cmd.Long, "virtual")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"user", "contest", "room", "cache", "sweep", "leaderboard", "config"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
}

func TestRejectsInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"--format", "xml", "leaderboard"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestParseSpec(t *testing.T) {
	cases := []struct {
		raw     string
		want    domain.ProblemSpec
		wantErr bool
	}{
		{raw: "codeforces", want: domain.ProblemSpec{Platform: domain.PlatformCodeforces}},
		{raw: "cf:800-1200", want: domain.ProblemSpec{Platform: domain.PlatformCodeforces, Min: intPtr(800), Max: intPtr(1200)}},
		{raw: "at:-400", want: domain.ProblemSpec{Platform: domain.PlatformAtCoder, Max: intPtr(400)}},
		{raw: "atcoder:1000-", want: domain.ProblemSpec{Platform: domain.PlatformAtCoder, Min: intPtr(1000)}},
		{raw: "topcoder:800-900", wantErr: true},
		{raw: "cf:800", wantErr: true},
		{raw: "cf:eight-nine", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := parseSpec(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

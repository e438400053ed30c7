package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Decode struct {
		Profile string `yaml:"profile"`
		Width   int    `yaml:"width"`
		Height  int    `yaml:"height"`
	} `yaml:"decode"`
}

func TestParseArgs(t *testing.T) {
	t.Setenv("VIDDEC_TEST_PROFILE", "mpeg2")

	path := filepath.Join(t.TempDir(), "viddec.yaml")
	data := "decode:\n  profile: ${VIDDEC_TEST_PROFILE}\n  width: ${VIDDEC_TEST_WIDTH:320}\n  height: 180\n"
	require.Nil(t, os.WriteFile(path, []byte(data), 0644))

	version, err := parseArgs([]string{
		"-c", path, "--config", "{decode: {height: 240}}", "-s", "decode.width=640", "in.m2v", "exec:cat x.h264",
	})
	require.Nil(t, err)
	require.False(t, version)
	require.Equal(t, []string{"in.m2v", "exec:cat x.h264"}, Inputs)
	require.Equal(t, path, ConfigPath)

	var cfg testConfig
	LoadConfig(&cfg)
	require.Equal(t, "mpeg2", cfg.Decode.Profile)
	require.Equal(t, 640, cfg.Decode.Width)
	require.Equal(t, 240, cfg.Decode.Height)
}

func TestParseArgsErrors(t *testing.T) {
	_, err := parseArgs([]string{"-c", filepath.Join(t.TempDir(), "missing.yaml")})
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = parseArgs([]string{"-s", "decode.width"})
	require.NotNil(t, err)

	_, err = parseArgs([]string{"--unknown"})
	require.NotNil(t, err)

	version, err := parseArgs([]string{"-v"})
	require.Nil(t, err)
	require.True(t, version)
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/stylegen/internal/config"
	"github.com/jmylchreest/stylegen/internal/protocol"
	"github.com/jmylchreest/stylegen/internal/version"
	"github.com/jmylchreest/stylegen/pkg/plugin"
)

const snapshot = `{
  "fills": {"Primary Blue": {"r": 0, "g": 0, "b": 1}},
  "textStyles": {"Body": {"font-size": "16px"}}
}`

// run executes the command tree with an isolated config and environment.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, name := range []string{"FORMAT", "COLOR_MODE", "NAME_FORMAT", "SOURCE", "TRANSPORT", "LOG_LEVEL", "HEX_ALPHA", "CHANNEL_SCALE", "HEADER", "OUTPUT_DIR", "THEME", "TIMEOUT"} {
		t.Setenv(config.EnvPrefix+name, "")
	}

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "styles.json")
	require.NoError(t, os.WriteFile(path, []byte(snapshot), 0o600))
	return path
}

func TestGenerateCommand(t *testing.T) {
	path := writeSnapshot(t)

	out, _, err := run(t, "", "generate", path)
	require.NoError(t, err)
	assert.Equal(t, "$primary-blue: rgba(0, 0, 255, 1.00);\n\n.body {\n  font-size: 16px;\n}\n", out)
}

func TestGenerateCommandSelections(t *testing.T) {
	path := writeSnapshot(t)

	out, _, err := run(t, "", "generate", "--source", path, "-f", "less", "-c", "hex", "-n", "camel")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "@primaryBlue: #0000ff;\n"), out)
}

func TestGenerateCommandConfigFile(t *testing.T) {
	path := writeSnapshot(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("format: css\ncolor_mode: HEX\nsource: "+path+"\n"), 0o600))

	out, _, err := run(t, "", "--config", cfgPath, "generate")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, ":root {\n  --primary-blue: #0000ff;\n}\n"), out)
}

func TestGenerateCommandStdin(t *testing.T) {
	out, _, err := run(t, snapshot, "generate", "-", "-f", "stylus", "-c", "hex")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "primary-blue = #0000ff\n"), out)
}

func TestGenerateCommandNoStyles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	out, _, err := run(t, "", "generate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "No styles were found")
}

func TestGenerateCommandErrors(t *testing.T) {
	_, errOut, err := run(t, "", "generate")
	require.Error(t, err)
	assert.Contains(t, errOut, "no style source configured")

	_, _, err = run(t, "", "generate", writeSnapshot(t), "-f", "sass")
	assert.ErrorIs(t, err, protocol.ErrUnsupportedOption)

	_, _, err = run(t, "", "generate", "-", "--transport", "json-stdio")
	assert.ErrorContains(t, err, "stdin")
}

func TestDownloadCommand(t *testing.T) {
	path := writeSnapshot(t)
	dir := t.TempDir()

	_, errOut, err := run(t, "", "download", path, "-f", "stylus", "-c", "hex", "-o", dir)
	require.NoError(t, err)
	assert.Contains(t, errOut, "Saved")

	data, err := os.ReadFile(filepath.Join(dir, "styles.stylus"))
	require.NoError(t, err)
	assert.Equal(t, "primary-blue = #0000ff\n\n.body\n  font-size 16px\n", string(data))
}

func TestCleanCommand(t *testing.T) {
	out, errOut, err := run(t, "", "clean")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "Cleared")
}

func TestWatchCommandRejectsUnwatchable(t *testing.T) {
	_, _, err := run(t, "", "watch", "-")
	assert.ErrorContains(t, err, "standard input")

	_, _, err = run(t, "", "watch", "https://example.com/styles.json")
	assert.ErrorContains(t, err, "remote")

	_, _, err = run(t, "", "watch")
	assert.ErrorContains(t, err, "snapshot file")
}

func TestFormatsCommand(t *testing.T) {
	out, _, err := run(t, "", "formats")
	require.NoError(t, err)
	for _, want := range []string{"styles.scss", "styles.less", "styles.stylus", "styles.css", "HSLA", "KEBAB_UNDERSCORE"} {
		assert.Contains(t, out, want)
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "stylegen "+version.Version+" (")
	assert.Contains(t, out, protocol.ProtocolVersion)
}

func TestEngineInfo(t *testing.T) {
	out, _, err := run(t, "", "engine", "--info")
	require.NoError(t, err)

	var info plugin.PluginInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "stylegen", info.Name)
	assert.Equal(t, protocol.ProtocolVersion, info.ProtocolVersion)
	assert.Equal(t, []string{"SCSS", "LESS", "STYLUS", "CSS"}, info.Formats)
}

func TestEngineStdio(t *testing.T) {
	path := writeSnapshot(t)

	req, err := protocol.EncodeRequest(protocol.Request{
		ID:         "req-1",
		Command:    protocol.CommandGenerateCode,
		Format:     protocol.FormatSCSS,
		ColorMode:  protocol.ColorModeHEX,
		NameFormat: protocol.NamePascal,
	})
	require.NoError(t, err)

	out, _, err := run(t, string(req)+"\n", "engine", "--stdio", "--source", path)
	require.NoError(t, err)

	resp, err := protocol.DecodeResponse([]byte(strings.TrimSpace(out)))
	require.NoError(t, err)
	assert.Equal(t, "req-1", resp.ID)
	assert.Equal(t, 2, resp.StyleCount())
	assert.Contains(t, resp.Code, "$PrimaryBlue: #0000ff;")
}

func TestEngineFlags(t *testing.T) {
	cfg := config.Default()
	cfg.Source = "styles.json"
	cfg.Header = "tokens"
	args := engineFlags(cfg, &rootOptions{configPath: "/etc/stylegen.yaml"})

	assert.Equal(t, []string{
		"--log-level", "warn",
		"--channel-scale", "unit",
		"--timeout", "30s",
		"--hex-alpha=false",
		"--config", "/etc/stylegen.yaml",
		"--source", "styles.json",
		"--header", "tokens",
	}, args)
}

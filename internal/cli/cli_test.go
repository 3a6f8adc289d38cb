package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"option-tagger/internal/analyze"
	"option-tagger/internal/plan"
)

const (
	storePkg     = "option-tagger/store"
	warehousePkg = "option-tagger/warehouse"
)

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	var stdout, stderr bytes.Buffer
	root := newRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))

	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// ---------- Command tree tests ----------

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, name := range []string{"check", "rewrite", "schema", "watch"} {
		assert.Contains(t, names, name, "missing subcommand: %s", name)
	}
}

func TestRootCommandVersion(t *testing.T) {
	root := newRootCommand()
	assert.Equal(t, "dev", root.Version)
}

func TestRootCommandPersistentFlags(t *testing.T) {
	root := newRootCommand()
	flags := []string{
		"config", "log-level", "marker-tag", "directive-tag",
		"skip-policy", "strip-markers", "workers", "overlay", "schema-out",
	}
	for _, name := range flags {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), "missing flag: %s", name)
	}
}

func TestSubcommandFlags(t *testing.T) {
	assert.NotNil(t, newCheckCommand().Flags().Lookup("format"))
	assert.NotNil(t, newCheckCommand().Flags().Lookup("all"))
	assert.NotNil(t, newRewriteCommand().Flags().Lookup("dry-run"))
	assert.NotNil(t, newRewriteCommand().Flags().Lookup("out"))
	assert.NotNil(t, newWatchCommand().Flags().Lookup("debounce"))
}

// ---------- Settings tests ----------

func TestLoadSettings_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	newRootCommand()

	s, err := loadSettings()
	require.NoError(t, err)
	assert.Equal(t, "opt", s.MarkerTag)
	assert.Equal(t, "json", s.DirectiveTag)
	assert.Equal(t, plan.SkipReject, s.SkipPolicy)
	assert.Equal(t, 4, s.Workers)
	assert.False(t, s.StripMarkers)
	assert.Equal(t, plan.DefaultConfig(), s.resolutionConfig())
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"same tags", "directive_tag", "opt"},
		{"empty marker tag", "marker_tag", " "},
		{"unknown skip policy", "skip_policy", "maybe"},
		{"no workers", "workers", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			newRootCommand()
			viper.Set(tt.key, tt.val)

			_, err := loadSettings()
			require.Error(t, err)
			assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
		})
	}
}

func TestLoadSettings_Env(t *testing.T) {
	t.Setenv("OPTION_TAGGER_SKIP_POLICY", "ignore")
	viper.Reset()
	t.Cleanup(viper.Reset)
	newRootCommand()
	require.NoError(t, initConfig(""))

	s, err := loadSettings()
	require.NoError(t, err)
	assert.Equal(t, plan.SkipIgnore, s.SkipPolicy)
}

func TestInitConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("marker_tag: api\nworkers: 2\n"), 0o644))

	viper.Reset()
	t.Cleanup(viper.Reset)
	newRootCommand()
	require.NoError(t, initConfig(path))

	s, err := loadSettings()
	require.NoError(t, err)
	assert.Equal(t, "api", s.MarkerTag)
	assert.Equal(t, 2, s.Workers)
}

func TestInitConfig_MissingFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	err := initConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

// ---------- Error mapping tests ----------

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		code errbuilder.ErrCode
		want int
	}{
		{"invalid argument", errbuilder.CodeInvalidArgument, 2},
		{"already exists", errbuilder.CodeAlreadyExists, 2},
		{"failed precondition", errbuilder.CodeFailedPrecondition, 3},
		{"not found", errbuilder.CodeNotFound, 5},
		{"internal", errbuilder.CodeInternal, 5},
		{"permission denied", errbuilder.CodePermissionDenied, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errbuilder.New().WithCode(tt.code).WithMsg("x")
			assert.Equal(t, tt.want, exitCodeForError(err))
		})
	}
	assert.Equal(t, 1, exitCodeForError(errors.New("plain")))
}

func TestErrorMessage(t *testing.T) {
	err := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("bad flag").
		WithCause(errors.New("cause"))
	assert.Equal(t, "bad flag", errorMessage(err))
	assert.Equal(t, "plain", errorMessage(errors.New("plain")))
}

// ---------- Pipeline tests ----------

func TestCheck_Store(t *testing.T) {
	stdout, stderr, err := run(t, "check", storePkg)
	require.NoError(t, err, stderr)

	for _, want := range []string{
		"Customer.Nickname",
		"nullable_and_not_required",
		"CustomerPatch.Settings.Theme",
		"with:unwrap_or_skip",
	} {
		assert.Contains(t, stdout, want)
	}
	assert.NotContains(t, stdout, "Customer.Password")
	assert.NotContains(t, stderr, "error:")
}

func TestCheck_WarehouseFails(t *testing.T) {
	_, stderr, err := run(t, "check", warehousePkg)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
	assert.Equal(t, 3, exitCodeForError(err))
	assert.Contains(t, stderr, "error:")
	assert.Contains(t, stderr, "warning:")
}

func TestCheck_JSON(t *testing.T) {
	stdout, _, err := run(t, "check", "--format", "json", storePkg)
	require.NoError(t, err)

	var out plan.ExportedPlan
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.NotEmpty(t, out.Structs)
	assert.Empty(t, out.Errors)
}

func TestCheck_UnknownFormat(t *testing.T) {
	_, _, err := run(t, "check", "--format", "xml", storePkg)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestCheck_MissingOverlay(t *testing.T) {
	_, _, err := run(t, "check", "--overlay", filepath.Join(t.TempDir(), "none.yaml"), storePkg)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestRewrite_DryRun(t *testing.T) {
	stdout, _, err := run(t, "rewrite", "--dry-run", storePkg)
	require.NoError(t, err)
	assert.Contains(t, stdout, `json:"nickname,omitzero,default,with:double_option"`)
	assert.Contains(t, stdout, `json:"address,with:nullable" opt:"nullable"`)
}

func TestRewrite_OutputDirAndSchema(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.json")

	_, _, err := run(t, "rewrite", "--out", dir, "--schema-out", schemaPath, storePkg)
	require.NoError(t, err)

	src, err := os.ReadFile(filepath.Join(dir, "store", "types.go"))
	require.NoError(t, err)
	assert.Contains(t, string(src), `with:unwrap_or_skip`)

	data, err := os.ReadFile(schemaPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"CustomerPatch"`)
}

func TestRewrite_RefusesOnErrors(t *testing.T) {
	dir := t.TempDir()
	_, _, err := run(t, "rewrite", "--out", dir, warehousePkg)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSchema_Store(t *testing.T) {
	stdout, _, err := run(t, "schema", storePkg)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Contains(t, doc, "components")
}

// ---------- Helper function tests ----------

func TestPlanRows(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	newRootCommand()
	s, err := loadSettings()
	require.NoError(t, err)

	res, err := runPipeline(context.Background(), s, []string{storePkg}, false)
	require.NoError(t, err)

	exported := plan.Export(res.Plan)
	annotated := planRows(exported, false)
	assert.Len(t, annotated, len(res.Plan.Changed()), spew.Sdump(annotated))
	for _, row := range annotated {
		assert.Len(t, row, len(planHeaders))
		assert.Contains(t, row[5], " -> ")
	}

	all := planRows(exported, true)
	assert.Greater(t, len(all), len(annotated))
	assert.NotEmpty(t, renderTable(planHeaders, all))
}

func TestSourceDirs(t *testing.T) {
	graph, err := analyze.NewAnalyzer().LoadPackages(storePkg, warehousePkg)
	require.NoError(t, err)

	dirs := sourceDirs(graph)
	require.Len(t, dirs, 2, spew.Sdump(dirs))
	assert.Equal(t, "store", filepath.Base(dirs[0]))
	assert.Equal(t, "warehouse", filepath.Base(dirs[1]))
}

func TestDefaultPatterns(t *testing.T) {
	assert.Equal(t, []string{"./..."}, defaultPatterns(nil))
	assert.Equal(t, []string{"a"}, defaultPatterns([]string{"a"}))
}

package cli

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"option-tagger/internal/gen"
	"option-tagger/internal/plan"
)

// settings are the resolved configuration values shared by all commands.
// Precedence: flag, environment (OPTION_TAGGER_*), config file, default.
type settings struct {
	MarkerTag    string
	DirectiveTag string
	SkipPolicy   plan.SkipPolicy
	StripMarkers bool
	Workers      int
	Overlay      string
	SchemaOut    string
}

func bindSettingsFlags(cmd *cobra.Command) {
	defaults := plan.DefaultConfig()
	flags := cmd.PersistentFlags()
	flags.String("marker-tag", defaults.MarkerTag, "Struct tag key holding markers")
	flags.String("directive-tag", defaults.DirectiveTag, "Struct tag key holding serialization directives")
	flags.String("skip-policy", string(defaults.SkipPolicy), "Skip plus markers: reject or ignore")
	flags.Bool("strip-markers", false, "Remove the marker tag from rewritten fields")
	flags.Int("workers", defaults.Workers, "Structs resolved in parallel")
	flags.String("overlay", "", "YAML marker overlay file")
	flags.String("schema-out", "", "Write OpenAPI component schemas to this file on rewrite")

	_ = viper.BindPFlag("marker_tag", flags.Lookup("marker-tag"))
	_ = viper.BindPFlag("directive_tag", flags.Lookup("directive-tag"))
	_ = viper.BindPFlag("skip_policy", flags.Lookup("skip-policy"))
	_ = viper.BindPFlag("strip_markers", flags.Lookup("strip-markers"))
	_ = viper.BindPFlag("workers", flags.Lookup("workers"))
	_ = viper.BindPFlag("overlay", flags.Lookup("overlay"))
	_ = viper.BindPFlag("schema_out", flags.Lookup("schema-out"))
}

func loadSettings() (settings, error) {
	s := settings{
		MarkerTag:    strings.TrimSpace(viper.GetString("marker_tag")),
		DirectiveTag: strings.TrimSpace(viper.GetString("directive_tag")),
		SkipPolicy:   plan.SkipPolicy(strings.TrimSpace(viper.GetString("skip_policy"))),
		StripMarkers: viper.GetBool("strip_markers"),
		Workers:      viper.GetInt("workers"),
		Overlay:      strings.TrimSpace(viper.GetString("overlay")),
		SchemaOut:    strings.TrimSpace(viper.GetString("schema_out")),
	}

	if s.MarkerTag == "" || s.DirectiveTag == "" {
		return settings{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("marker_tag and directive_tag must be set")
	}
	if s.MarkerTag == s.DirectiveTag {
		return settings{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("marker_tag and directive_tag must differ, both are %q", s.MarkerTag))
	}
	if !s.SkipPolicy.Valid() {
		return settings{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("skip_policy must be %q or %q, got %q", plan.SkipReject, plan.SkipIgnore, s.SkipPolicy))
	}
	if s.Workers < 1 {
		return settings{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("workers must be at least 1, got %d", s.Workers))
	}
	return s, nil
}

func (s settings) resolutionConfig() plan.ResolutionConfig {
	return plan.ResolutionConfig{
		MarkerTag:    s.MarkerTag,
		DirectiveTag: s.DirectiveTag,
		SkipPolicy:   s.SkipPolicy,
		Workers:      s.Workers,
	}
}

func (s settings) rewriterConfig() gen.RewriterConfig {
	return gen.RewriterConfig{
		MarkerTag:    s.MarkerTag,
		DirectiveTag: s.DirectiveTag,
		StripMarkers: s.StripMarkers,
	}
}

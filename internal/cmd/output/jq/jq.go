// Package jq applies --jq expressions to command output with gojq.
package jq

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	cmdpkg "github.com/convex-panel/panelctl/internal/cmd"
	cmdcommon "github.com/convex-panel/panelctl/internal/cmd/common"
	"github.com/convex-panel/panelctl/internal/config"
	"github.com/convex-panel/panelctl/internal/iostreams"
	"github.com/convex-panel/panelctl/internal/panel/jsonview"
)

const (
	FlagName           = "jq"
	RawOutputFlagName  = "jq-raw-output"
	RawOutputFlagShort = "r"
	ColorFlagName      = "jq-color"

	DefaultExpressionConfigPath = "jq.default-expression"
	ColorConfigPath             = "jq.color"
	StyleConfigPath             = "jq.style"
)

var queryCache sync.Map

// Settings is the resolved jq configuration of one command run.
type Settings struct {
	Filter    string
	RawOutput bool
	ColorMode cmdcommon.ColorMode
	Style     string
}

func AddFlags(flags *pflag.FlagSet) {
	flags.String(FlagName, "",
		"Filter the JSON result with a jq expression.")
	flags.BoolP(RawOutputFlagName, RawOutputFlagShort, false,
		"Print string results without JSON quotes (like jq -r). Requires --jq.")
	flags.Var(cmdpkg.NewEnum([]string{"auto", "always", "never"}, "auto"), ColorFlagName,
		fmt.Sprintf(`Colorize filtered JSON.
- Config path: [ %s ]
- Allowed    : [ auto|always|never ]`, ColorConfigPath))
}

// BindFlags lets config supply the color mode when the flag is absent.
func BindFlags(cfg config.Hook, flags *pflag.FlagSet) error {
	if cfg == nil || flags == nil {
		return nil
	}
	if f := flags.Lookup(ColorFlagName); f != nil {
		return cfg.BindFlag(ColorConfigPath, f)
	}
	return nil
}

// ResolveSettings reads the jq flags of command. A --jq given with an empty
// expression means the identity filter.
func ResolveSettings(command *cobra.Command, cfg config.Hook) (Settings, error) {
	settings := Settings{ColorMode: cmdcommon.ColorModeAuto, Style: jsonview.DefaultStyle}
	if command == nil || command.Flags().Lookup(FlagName) == nil {
		return settings, nil
	}
	flags := command.Flags()

	filter, err := flags.GetString(FlagName)
	if err != nil {
		return Settings{}, err
	}
	filter = strings.TrimSpace(filter)
	if flags.Changed(FlagName) && filter == "" {
		filter = "."
	}
	if !flags.Changed(FlagName) && cfg != nil {
		filter = strings.TrimSpace(cfg.GetString(DefaultExpressionConfigPath))
	}
	settings.Filter = filter

	if settings.RawOutput, err = flags.GetBool(RawOutputFlagName); err != nil {
		return Settings{}, err
	}

	mode := flags.Lookup(ColorFlagName).Value.String()
	if cfg != nil && !flags.Changed(ColorFlagName) {
		if v := strings.TrimSpace(cfg.GetString(ColorConfigPath)); v != "" {
			mode = v
		}
		if v := strings.TrimSpace(cfg.GetString(StyleConfigPath)); v != "" {
			settings.Style = v
		}
	}
	if settings.ColorMode, err = cmdcommon.ColorModeStringToIota(strings.ToLower(mode)); err != nil {
		return Settings{}, &cmdpkg.ConfigurationError{Err: err}
	}
	return settings, nil
}

func (s Settings) HasFilter() bool {
	return s.Filter != ""
}

// Validate rejects flag combinations jq output cannot honor.
func (s Settings) Validate(outType cmdcommon.OutputFormat) error {
	switch {
	case s.RawOutput && !s.HasFilter():
		return &cmdpkg.ConfigurationError{Err: fmt.Errorf("--%s requires --%s", RawOutputFlagName, FlagName)}
	case s.RawOutput && outType != cmdcommon.JSON:
		return &cmdpkg.ConfigurationError{
			Err: fmt.Errorf("--%s is only supported with --output json", RawOutputFlagName),
		}
	case s.HasFilter() && outType == cmdcommon.TEXT:
		return &cmdpkg.ConfigurationError{
			Err: fmt.Errorf("--%s is only supported with --output json or --output yaml", FlagName),
		}
	}
	return nil
}

// Apply filters raw. When it writes to out itself (raw or colorized output)
// it reports handled; otherwise the caller prints the returned value.
func Apply(raw any, outType cmdcommon.OutputFormat, s Settings, out io.Writer) (result any, handled bool, err error) {
	if !s.HasFilter() {
		return raw, false, nil
	}
	if err := s.Validate(outType); err != nil {
		return nil, false, err
	}

	body, err := json.Marshal(raw)
	if err != nil {
		return nil, false, fmt.Errorf("encode output before applying jq filter: %w", err)
	}
	results, err := Evaluate(body, s.Filter)
	if err != nil {
		return nil, false, err
	}

	if s.RawOutput {
		return nil, true, writeRaw(results, out)
	}

	var value any
	switch len(results) {
	case 0:
	case 1:
		value = results[0]
	default:
		value = results
	}

	if outType == cmdcommon.JSON && useColor(s.ColorMode, out) {
		_, err := fmt.Fprintln(out, strings.TrimRight(jsonview.Render(value, false, s.Style), "\n"))
		return nil, true, err
	}
	return value, false, nil
}

// Evaluate runs filter over the JSON document in body.
func Evaluate(body []byte, filter string) ([]any, error) {
	if len(body) == 0 {
		return nil, errors.New("output is empty, cannot apply jq filter")
	}
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("output is not valid JSON: %w", err)
	}

	code, err := compile(filter)
	if err != nil {
		return nil, err
	}
	var results []any
	iter := code.Run(payload)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, fmt.Errorf("jq filter failed: %w", err)
		}
		results = append(results, v)
	}
	return results, nil
}

func compile(filter string) (*gojq.Code, error) {
	if cached, ok := queryCache.Load(filter); ok {
		return cached.(*gojq.Code), nil
	}
	parsed, err := gojq.Parse(filter)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, fmt.Errorf("compile jq expression: %w", err)
	}
	queryCache.Store(filter, code)
	return code, nil
}

func writeRaw(results []any, out io.Writer) error {
	for _, r := range results {
		line, ok := r.(string)
		if !ok {
			b, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("encode filtered result: %w", err)
			}
			line = string(b)
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

func useColor(mode cmdcommon.ColorMode, out io.Writer) bool {
	switch mode {
	case cmdcommon.ColorModeAlways:
		return true
	case cmdcommon.ColorModeNever:
		return false
	}
	if _, disabled := os.LookupEnv("NO_COLOR"); disabled {
		return false
	}
	return iostreams.IsTerminal(out)
}

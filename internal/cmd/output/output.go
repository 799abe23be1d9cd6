// Package output prints command results in the selected --output format.
package output

import (
	"io"

	"github.com/segmentio/cli"

	"github.com/convex-panel/panelctl/internal/cmd"
	cmdcommon "github.com/convex-panel/panelctl/internal/cmd/common"
	jqoutput "github.com/convex-panel/panelctl/internal/cmd/output/jq"
)

// TextFunc renders the human readable form of a result.
type TextFunc func(out io.Writer) error

// Print writes raw as json or yaml after the --jq filter, or calls text for
// --output text.
func Print(helper cmd.Helper, raw any, text TextFunc) error {
	outType, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}

	filtered, handled, err := resolvePayload(helper, outType, raw)
	if err != nil {
		return err
	}
	if handled {
		return nil
	}

	streams := helper.GetStreams()
	if outType == cmdcommon.TEXT && text != nil {
		return text(streams.Out)
	}

	printer, err := cli.Format(outType.String(), streams.Out)
	if err != nil {
		return err
	}
	defer printer.Flush()
	printer.Print(filtered)
	return nil
}

func resolvePayload(helper cmd.Helper, outType cmdcommon.OutputFormat, raw any) (any, bool, error) {
	c := helper.GetCmd()
	if c == nil || c.Flags().Lookup(jqoutput.FlagName) == nil {
		return raw, false, nil
	}
	cfg, err := helper.GetConfig()
	if err != nil {
		return nil, false, err
	}
	settings, err := jqoutput.ResolveSettings(c, cfg)
	if err != nil {
		return nil, false, err
	}
	if err := settings.Validate(outType); err != nil {
		return nil, false, err
	}
	if !settings.HasFilter() {
		return raw, false, nil
	}
	filtered, handled, err := jqoutput.Apply(raw, outType, settings, helper.GetStreams().Out)
	if err != nil {
		return nil, false, cmd.PrepareExecutionErrorWithHelper(helper, "jq filter failed", err)
	}
	return filtered, handled, nil
}

package profile

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/convex-panel/panelctl/internal/cmd"
	"github.com/convex-panel/panelctl/internal/cmd/output"
	"github.com/convex-panel/panelctl/internal/cmd/output/text"
	"github.com/convex-panel/panelctl/internal/cmd/root/verbs"
	"github.com/convex-panel/panelctl/internal/profile"
	"github.com/convex-panel/panelctl/internal/util/i18n"
	"github.com/convex-panel/panelctl/internal/util/normalizers"
)

var (
	profileUse   = "profiles [name]"
	profileShort = i18n.T("root.profile.profileShort", "Show CLI profiles")
	profileLong  = normalizers.LongDesc(i18n.T("root.profile.profileLong",
		`Lists the profiles of the configuration file, or the settings of one
profile when a name is given. Admin keys are redacted.`))
)

const redacted = "********"

func NewProfileCmd() *cobra.Command {
	rv := &cobra.Command{
		Use:     profileUse,
		Short:   profileShort,
		Long:    profileLong,
		Aliases: []string{"profile"},
		Args:    cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			helper := cmd.BuildHelper(c, args)
			mgr, ok := c.Context().Value(profile.ProfileManagerKey).(profile.Manager)
			if !ok || mgr == nil {
				return &cmd.ConfigurationError{Err: fmt.Errorf("no profile manager configured")}
			}
			return run(helper, mgr)
		},
	}
	return rv
}

type profileRecord struct {
	Name   string `json:"name"   yaml:"name"`
	Active bool   `json:"active" yaml:"active"`
}

func run(helper cmd.Helper, mgr profile.Manager) error {
	v, err := helper.GetVerb()
	if err != nil {
		return err
	}
	if v != verbs.Get && v != verbs.List {
		return fmt.Errorf("command %s does not support %s", profileUse, v)
	}
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}

	if args := helper.GetArgs(); len(args) == 1 {
		settings, err := mgr.GetProfile(args[0])
		if err != nil {
			return cmd.PrepareExecutionErrorFromErr(helper, err)
		}
		redact(settings)
		return output.Print(helper, settings, func(out io.Writer) error {
			return text.Fields(out, "Profile "+args[0], flatten("", settings))
		})
	}

	names := mgr.GetProfiles()
	records := make([]profileRecord, 0, len(names))
	for _, name := range names {
		records = append(records, profileRecord{Name: name, Active: name == cfg.GetProfile()})
	}
	return output.Print(helper, records, func(out io.Writer) error {
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			marker := ""
			if r.Active {
				marker = "*"
			}
			rows = append(rows, []string{r.Name, marker})
		}
		return text.Table(out, []string{"PROFILE", "ACTIVE"}, rows, "No profiles configured.")
	})
}

func redact(settings map[string]any) {
	for k, v := range settings {
		switch val := v.(type) {
		case map[string]any:
			redact(val)
		case string:
			if strings.Contains(k, "key") && val != "" {
				settings[k] = redacted
			}
		}
	}
}

func flatten(prefix string, settings map[string]any) []text.Field {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var fields []text.Field
	for _, k := range keys {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		if nested, ok := settings[k].(map[string]any); ok {
			fields = append(fields, flatten(path, nested)...)
			continue
		}
		fields = append(fields, text.Field{Label: path, Value: fmt.Sprint(settings[k])})
	}
	return fields
}

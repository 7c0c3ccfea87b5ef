package winify

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/arthur-debert/winify/internal/version"
	"github.com/arthur-debert/winify/pkg/config"
	"github.com/arthur-debert/winify/pkg/logging"
	"github.com/arthur-debert/winify/pkg/paths"
	"github.com/arthur-debert/winify/pkg/provision"
	"github.com/arthur-debert/winify/pkg/runner"
	"github.com/arthur-debert/winify/pkg/ui"
	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags and the collaborators the
// subcommands share.
type rootOptions struct {
	verbosity  int
	configFile string
	dryRun     bool
	noColor    bool
	output     string

	newRunner func() runner.Runner
	stdin     *os.File
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	cmd, _ := newRootCmd(func() runner.Runner { return runner.New() })
	return cmd
}

// Execute runs the CLI and returns the process exit status
func Execute(ctx context.Context, args []string) int {
	cmd, opts := newRootCmd(func() runner.Runner { return runner.New() })
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		renderer, rerr := opts.renderer(os.Stderr)
		if rerr != nil {
			renderer = ui.NewTextRenderer(os.Stderr)
		}
		_ = renderer.RenderError(err)
		return 1
	}
	return 0
}

func newRootCmd(newRunner func() runner.Runner) (*cobra.Command, *rootOptions) {
	initTemplateFormatting()

	opts := &rootOptions{newRunner: newRunner, stdin: os.Stdin}

	rootCmd := &cobra.Command{
		Use:     "winify",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity, paths.New().LogFilePath())
			if opts.noColor {
				pterm.DisableStyling()
			}
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf(MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().BoolVar(&opts.dryRun, "dry-run", false, MsgFlagDryRun)
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, MsgFlagNoColor)
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "auto", MsgFlagOutput)

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.SetVersionTemplate(fmt.Sprintf("winify version %s\n  commit: %s\n  built:  %s\n",
		version.Version, version.Commit, version.Date))

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: MsgGroupCore})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: MsgGroupMisc})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newProbeCmd(opts))
	rootCmd.AddCommand(newDetectCmd(opts))
	rootCmd.AddCommand(newEnableCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd, opts
}

// renderer picks the output renderer from --output and --no-color
func (o *rootOptions) renderer(w io.Writer) (ui.Renderer, error) {
	format, err := ui.ParseFormat(o.output)
	if err != nil {
		return nil, fmt.Errorf(MsgErrFormat, err)
	}
	if o.noColor && format != ui.FormatJSON {
		format = ui.FormatText
	}
	return ui.NewRenderer(format, w)
}

func (o *rootOptions) loadConfig(overrides map[string]interface{}) (*config.Config, paths.Paths, error) {
	p := paths.New()
	cfg, err := config.Load(config.LoadOptions{
		DefaultFile: p.ConfigFilePath(),
		File:        o.configFile,
		Overrides:   overrides,
	})
	if err != nil {
		return nil, nil, fmt.Errorf(MsgErrLoadConfig, err)
	}
	return cfg, p, nil
}

func (o *rootOptions) pipeline(overrides map[string]interface{}) (*provision.Pipeline, error) {
	cfg, p, err := o.loadConfig(overrides)
	if err != nil {
		return nil, err
	}
	pipe, err := provision.New(cfg, p, o.newRunner())
	if err != nil {
		return nil, err
	}
	pipe.Confirm = ui.Confirm(o.stdin)
	return pipe, nil
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	var (
		assumeYes   bool
		skipInstall bool
		extensionID string
	)

	cmd := &cobra.Command{
		Use:     "run",
		Short:   MsgRunShort,
		Long:    MsgRunLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := opts.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			var overrides map[string]interface{}
			if extensionID != "" {
				overrides = map[string]interface{}{"extension.id": extensionID}
			}
			pipe, err := opts.pipeline(overrides)
			if err != nil {
				return err
			}

			report, runErr := pipe.Run(cmd.Context(), provision.Options{
				DryRun:      opts.dryRun,
				AssumeYes:   assumeYes,
				SkipInstall: skipInstall,
			})
			if err := renderer.RenderReport(report); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "assume-yes", "y", false, MsgFlagAssumeYes)
	cmd.Flags().BoolVar(&skipInstall, "skip-install", false, MsgFlagSkipInstall)
	cmd.Flags().StringVar(&extensionID, "extension", "", MsgFlagExtension)

	return cmd
}

func newProbeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "probe",
		Short:   MsgProbeShort,
		Long:    MsgProbeLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := opts.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			pipe, err := opts.pipeline(nil)
			if err != nil {
				return err
			}

			report := &provision.Report{}
			probeErr := pipe.Probe(cmd.Context(), provision.Options{}, report)
			if err := renderer.RenderReport(report); err != nil {
				return err
			}
			return probeErr
		},
	}
}

func newDetectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "detect",
		Short:   MsgDetectShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := opts.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			pipe, err := opts.pipeline(nil)
			if err != nil {
				return err
			}

			report := &provision.Report{}
			if err := pipe.Detect(cmd.Context(), report); err != nil {
				return err
			}
			return renderer.RenderReport(report)
		},
	}
}

func newEnableCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "enable [extension-id]",
		Short:   MsgEnableShort,
		Long:    MsgEnableLong,
		GroupID: "core",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := opts.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			pipe, err := opts.pipeline(nil)
			if err != nil {
				return err
			}

			id := pipe.ExtensionID
			if len(args) == 1 {
				id = args[0]
			}

			report := &provision.Report{}
			if opts.dryRun {
				pipe.Inspect(cmd.Context(), id, report)
			} else {
				pipe.Enable(cmd.Context(), id, report)
			}
			if err := renderer.RenderReport(report); err != nil {
				return err
			}
			return cmd.Context().Err()
		},
	}
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		Long:    MsgConfigLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if defaults {
				_, err := fmt.Fprint(cmd.OutOrStdout(), config.GetDefaultContent())
				return err
			}

			// Validate the merged result before printing it
			if _, _, err := opts.loadConfig(nil); err != nil {
				return err
			}
			k, err := config.LoadKoanf(config.LoadOptions{
				DefaultFile: paths.New().ConfigFilePath(),
				File:        opts.configFile,
			})
			if err != nil {
				return fmt.Errorf(MsgErrLoadConfig, err)
			}

			out, err := toml.Marshal(k.Raw())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().BoolVar(&defaults, "defaults", false, MsgFlagDefaults)
	return cmd
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(cmd.OutOrStdout(), true)
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
		},
	}
}

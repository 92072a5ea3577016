package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/LiXizhi/nplmerge"
	"github.com/LiXizhi/nplmerge/internal/config"
	"github.com/LiXizhi/nplmerge/internal/logging"
	"github.com/LiXizhi/nplmerge/merge"
)

// app carries what PersistentPreRunE resolved for the subcommands.
type app struct {
	fs     afero.Fs
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	a := &app{fs: fs}
	var configPath string

	root := &cobra.Command{
		Use:           "nplmerge",
		Short:         "Apply structured edits to Lua/NPL sources",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			v := config.NewViper(a.fs)
			for key, flag := range map[string]string{
				"line_ending": "line-ending",
				"watch":       "watch",
				"log.level":   "log-level",
				"log.json":    "log-json",
			} {
				if err := v.BindPFlag(key, cmd.Root().PersistentFlags().Lookup(flag)); err != nil {
					return fmt.Errorf("binding --%s: %w", flag, err)
				}
			}
			cfg, err := config.Load(v, configPath)
			if err != nil {
				return err
			}
			lc := cfg.Logging()
			lc.Output = cmd.ErrOrStderr()
			a.cfg = cfg
			a.logger = logging.New(lc)
			merge.SetMetricsEnabled(cfg.Telemetry.Enabled)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default ./nplmerge.yaml)")
	pf.String("line-ending", "auto", "line ending: auto, lf, crlf or cr")
	pf.Bool("watch", false, "refuse to commit files changed on disk during the session")
	pf.String("log-level", "info", "log level: debug, info, warn or error")
	pf.Bool("log-json", false, "log as JSON")

	root.AddCommand(newApplyCmd(a), newOutlineCmd(a), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), nplmerge.Version())
			return err
		},
	}
}

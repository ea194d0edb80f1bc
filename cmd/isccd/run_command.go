package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"isccd/internal/config"
	"isccd/internal/daemon"
	"isccd/internal/logging"
	"isccd/internal/omero"
)

func newRunCommand(configFlag *string) *cobra.Command {
	var (
		once         bool
		host         string
		port         int
		username     string
		password     string
		pollInterval int
		batchSize    int
		namespace    string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the fingerprint service",
		Long: `Run connects to the configured OMERO server, watches for newly imported
images, and attaches an ISCC fingerprint annotation to each one. The service
keeps running until interrupted; --once performs a single poll cycle instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(*configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			flags := cmd.Flags()
			if flags.Changed("host") {
				cfg.Omero.Host = host
			}
			if flags.Changed("port") {
				cfg.Omero.Port = port
			}
			if flags.Changed("username") {
				cfg.Omero.Username = username
			}
			if flags.Changed("password") {
				cfg.Omero.Password = password
			}
			if flags.Changed("poll-interval") {
				cfg.Service.PollIntervalSeconds = pollInterval
			}
			if flags.Changed("batch-size") {
				cfg.Service.BatchSize = batchSize
			}
			if flags.Changed("namespace") {
				cfg.Service.Namespace = namespace
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client := omero.NewHTTPClient(cfg.Omero)
			d, err := daemon.New(cfg, client, logger)
			if err != nil {
				return err
			}
			if once {
				return d.RunOnce(ctx)
			}
			return d.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Run one poll-process cycle and exit")
	cmd.Flags().StringVar(&host, "host", "", "OMERO server host")
	cmd.Flags().IntVar(&port, "port", 0, "OMERO server port")
	cmd.Flags().StringVar(&username, "username", "", "OMERO username")
	cmd.Flags().StringVar(&password, "password", "", "OMERO password")
	cmd.Flags().IntVar(&pollInterval, "poll-interval", 0, "Seconds between polls")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Maximum assets per poll")
	cmd.Flags().StringVar(&namespace, "namespace", "", "Annotation namespace")

	return cmd
}

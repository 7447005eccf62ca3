package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/zalepa/judgefee/roster"
	"github.com/zalepa/judgefee/web"
)

// Serve is the "serve" subcommand: the browser form for one event's roster.
func Serve() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "start the judge fee form in the browser",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "listen address, overriding server.addr",
			},
			feeTablePathFlag(),
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	e, err := loadEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	cfg := e.cfg
	if c.IsSet("addr") {
		cfg.Server.Addr = c.String("addr")
	}

	opts := cfg.FeeOptions()
	table := e.openFeeTable()
	store := roster.New(opts, roster.WithLookup(table), roster.WithLogger(e.logger))

	srv := web.New(web.Config{
		Store:    store,
		Seed:     cfg.AppendSeed(),
		Report:   cfg.ReportOptions(),
		FileName: cfg.ReportFileName(),
		Regions:  func() []string { return table.Table().Regions() },
		Logger:   e.logger,
	})

	e.logger.Info("starting form server",
		zap.String("addr", cfg.Server.Addr),
		zap.String("meal_schema", string(opts.MealSchema)),
		zap.Bool("region_lookup", opts.RegionLookup),
		zap.Bool("extra_fees", opts.ExtraFees))

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return web.Run(ctx, cfg.Server.Addr, srv, cfg.Server.ShutdownTimeout, e.logger)
}

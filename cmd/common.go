// Package cmd implements the judgefee subcommands.
package cmd

import (
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/zalepa/judgefee/config"
	"github.com/zalepa/judgefee/feetable"
	"github.com/zalepa/judgefee/logging"
)

const (
	configFlag   = "config"
	verboseFlag  = "verbose"
	feeTableFlag = "fee-table"
)

// GlobalFlags are accepted before any subcommand.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    configFlag,
			Aliases: []string{"c"},
			Usage:   "path to the YAML config file; defaults are used when it does not exist",
			Value:   config.DefaultPath,
		},
		&cli.BoolFlag{
			Name:    verboseFlag,
			Aliases: []string{"v"},
			Usage:   "log at debug level",
		},
	}
}

func feeTablePathFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  feeTableFlag,
		Usage: "fee table CSV or XLSX, overriding fee_table.path; empty disables region lookup",
	}
}

// env is what every subcommand loads first.
type env struct {
	cfg    config.Config
	logger *zap.Logger
}

func loadEnv(c *cli.Context) (*env, error) {
	cfg, err := config.Load(c.String(configFlag))
	if err != nil {
		return nil, err
	}
	if c.IsSet(feeTableFlag) {
		cfg.FeeTable.Path = c.String(feeTableFlag)
	}

	logger, err := logging.New(logging.Options{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		Verbose:     c.Bool(verboseFlag),
	})
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger}, nil
}

func (e *env) close() {
	_ = e.logger.Sync()
}

// openFeeTable starts loading the configured fee table. Region lookup being
// off means no table is read at all.
func (e *env) openFeeTable() *feetable.Pending {
	path := e.cfg.FeeTable.Path
	if !e.cfg.Engine.RegionLookup {
		path = ""
	}
	return feetable.Open(path, e.logger)
}

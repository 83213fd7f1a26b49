package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/thrasher-corp/gct-backtester/btscript/vm"
	"github.com/thrasher-corp/gct-backtester/config"
	"github.com/thrasher-corp/gct-backtester/data/kline"
	"github.com/thrasher-corp/gct-backtester/engine"
	"github.com/thrasher-corp/gct-backtester/journal"
	"github.com/thrasher-corp/gct-backtester/log"
	"github.com/thrasher-corp/gct-backtester/report"
	"github.com/thrasher-corp/gct-backtester/signaler"
)

const version = "1.0.0"

var (
	configPath  string
	journalPath string
	verbose     bool
)

func main() {
	app := cli.NewApp()
	app.Name = "gct-backtester"
	app.Version = version
	app.EnableBashCompletion = true
	app.Usage = "command line interface for running scripted strategy backtests"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to a json or yaml run configuration",
			Destination: &configPath,
		},
		&cli.StringFlag{
			Name:        "journal",
			Usage:       "persist run results to the named sqlite database",
			Destination: &journalPath,
		},
		&cli.BoolFlag{
			Name:        "verbose",
			Usage:       "enable debug output on every sub logger",
			Destination: &verbose,
		},
	}
	app.Commands = []*cli.Command{
		runCommand,
		evaluateCommand,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sig := <-signaler.WaitForInterrupt()
		log.Warnf(log.Global, "Captured %v, shutdown requested", sig)
		cancel()
	}()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Errorln(log.Global, err)
		os.Exit(1)
	}
}

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "execute one strategy script against a bar data file",
	ArgsUsage: "<strategy> <data>",
	Action:    runStrategy,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "strategy",
			Usage: "path to the strategy script",
		},
		&cli.StringFlag{
			Name:  "data",
			Usage: "path to the csv bar file",
		},
		&cli.StringFlag{
			Name:  "output",
			Usage: "write the full run result as json to the named file",
		},
	},
}

func runStrategy(c *cli.Context) error {
	if c.NArg() == 0 && c.NumFlags() == 0 {
		return cli.ShowSubcommandHelp(c)
	}

	strategyFile := c.String("strategy")
	if strategyFile == "" {
		strategyFile = c.Args().First()
	}
	dataFile := c.String("data")
	if dataFile == "" {
		dataFile = c.Args().Get(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	bt, err := engine.NewFromConfig(cfg, dataFile, strategyFile)
	if err != nil {
		return err
	}
	defer func() {
		if err := bt.Close(); err != nil {
			log.Errorln(log.JournalMgr, err)
		}
	}()

	result, err := bt.Run(c.Context)
	if err != nil {
		return err
	}

	report.PrintResults(result)
	if out := c.String("output"); out != "" {
		return report.WriteJSONFile(result, out)
	}
	return nil
}

var evaluateCommand = &cli.Command{
	Name:      "evaluate",
	Usage:     "run every strategy script in a directory against one bar data file and rank the outcomes",
	ArgsUsage: "<scripts dir> <data>",
	Action:    evaluateStrategies,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "scripts",
			Usage: "directory holding the candidate strategy scripts",
		},
		&cli.StringFlag{
			Name:  "data",
			Usage: "path to the csv bar file",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "number of concurrent runs, zero selects the cpu count",
		},
	},
}

func evaluateStrategies(c *cli.Context) error {
	if c.NArg() == 0 && c.NumFlags() == 0 {
		return cli.ShowSubcommandHelp(c)
	}

	dir := c.String("scripts")
	if dir == "" {
		dir = c.Args().First()
	}
	dataFile := c.String("data")
	if dataFile == "" {
		dataFile = c.Args().Get(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	scripts, err := filepath.Glob(filepath.Join(dir, "*"+vm.ScriptExt))
	if err != nil {
		return err
	}
	if len(scripts) == 0 {
		return fmt.Errorf("no %v scripts found under %v", vm.ScriptExt, dir)
	}

	table, err := kline.LoadFile(dataFile)
	if err != nil {
		return err
	}

	evaluator, err := engine.NewEvaluator(cfg, table, c.Int("workers"))
	if err != nil {
		return err
	}

	var writer journal.Writer = journal.Nop{}
	if cfg.Journal.Enabled {
		if writer, err = journal.NewSqlite(cfg.Journal.Path); err != nil {
			return err
		}
	}
	defer func() {
		if err := writer.Close(); err != nil {
			log.Errorln(log.JournalMgr, err)
		}
	}()

	report.PrintEvaluations(evaluator.Run(c.Context, scripts, writer))
	return nil
}

func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = config.ReadConfigFromFile(configPath); err != nil {
			return nil, err
		}
	}
	if journalPath != "" {
		cfg.Journal = config.JournalSettings{Enabled: true, Path: journalPath}
	}
	if verbose {
		cfg.Verbose = true
		log.SetVerbose()
	}
	return cfg, nil
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mapapp "bitbucket.org/kleinnic74/mapview/app"
	"bitbucket.org/kleinnic74/mapview/config"
	"bitbucket.org/kleinnic74/mapview/consts"
	"bitbucket.org/kleinnic74/mapview/logging"
	"github.com/iancoleman/strcase"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const CONFIG string = `config`
const PORT string = `port`
const DATADIR string = `dataDir`
const DEV string = `dev`
const LOGFILE string = `logFile`
const FLAGS string = `featureFlags`

func envVar(name string) []string {
	return []string{config.EnvPrefix + "_" + strcase.ToScreamingSnake(name)}
}

func main() {
	app := cli.NewApp()
	app.Name = "mapview"
	app.Usage = "Headless slippy map viewports over HTTP"
	app.Version = consts.Version()

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    CONFIG,
			Aliases: []string{"c"},
			Usage:   "YAML configuration file, mapview.yaml in . or ./configs if not given",
			EnvVars: envVar(CONFIG),
		},
		&cli.UintFlag{
			Name:    PORT,
			Aliases: []string{"p"},
			Usage:   "HTTP port, overrides server.port",
			EnvVars: envVar(PORT),
		},
		&cli.StringFlag{
			Name:    DATADIR,
			Aliases: []string{"d"},
			Usage:   "Directory of the view database, overrides server.datadir",
			EnvVars: envVar(DATADIR),
		},
		&cli.BoolFlag{
			Name:    DEV,
			Usage:   "Debug logging to the console and debug routes",
			Value:   consts.IsDevMode(),
			EnvVars: envVar(DEV),
		},
		&cli.StringFlag{
			Name:    LOGFILE,
			Usage:   "Also write JSON logs to this file",
			EnvVars: envVar(LOGFILE),
		},
		&cli.StringSliceFlag{
			Name:    FLAGS,
			Aliases: []string{"f"},
			Usage:   "Feature flags to enable, e.g. viewport.persist or debug.svg",
			EnvVars: envVar(FLAGS),
		},
	}

	app.Action = func(c *cli.Context) error {
		closeLogs, err := logging.Configure(logging.Options{DevMode: c.Bool(DEV), File: c.String(LOGFILE)})
		if err != nil {
			return err
		}
		defer closeLogs()

		cfg, err := config.Load(c.String(CONFIG))
		if err != nil {
			return err
		}
		if c.IsSet(PORT) {
			cfg.Server.Port = c.Uint(PORT)
		}
		if c.IsSet(DATADIR) {
			cfg.Server.DataDir = c.String(DATADIR)
		}
		cfg.Flags = append(cfg.Flags, c.StringSlice(FLAGS)...)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		logger := logging.From(ctx)
		logger.Info("Starting mapview", zap.String("version", app.Version), zap.Strings("flags", cfg.Flags))

		a, err := mapapp.NewApp(ctx, cfg)
		if err != nil {
			return fmt.Errorf("initialization failed: %w", err)
		}
		a.Run(ctx)
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

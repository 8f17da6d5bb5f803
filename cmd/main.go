package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	logging "github.com/ipfs/go-log"
	cli "github.com/urfave/cli/v2"

	"image-labeler/config"
	"image-labeler/internal/api/telegram"
	"image-labeler/internal/api/web"
	"image-labeler/internal/container"
)

var log = logging.Logger("labeler")

const shutdownTimeout = 10 * time.Second

func main() {
	app := cli.NewApp()
	app.Name = "labeler"
	app.Usage = "upload an image and get its labels"

	app.Commands = []*cli.Command{
		runCmd,
	}

	app.RunAndExitOnError()
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "start the web server (and the telegram bot if TELEGRAM_TOKEN is set)",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "path to a YAML config file",
			EnvVars: []string{"CONFIG_PATH"},
		},
		&cli.IntFlag{
			Name:  "port",
			Usage: "listening port, overrides PORT",
		},
		&cli.StringFlag{
			Name:  "mode",
			Usage: "response mode: html or json, overrides RESPONSE_MODE",
		},
	},
	Action: func(cctx *cli.Context) error {
		cfg, err := config.Load(cctx.String("config"))
		if err != nil {
			return err
		}
		if cctx.IsSet("port") {
			cfg.Port = cctx.Int("port")
		}
		if cctx.IsSet("mode") {
			cfg.ResponseMode = cctx.String("mode")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		if err := logging.SetLogLevel("*", cfg.LogLevel); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cctx.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()

		return run(ctx, cfg)
	},
}

func run(ctx context.Context, cfg *config.Config) error {
	c, err := container.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.Errorf("closing providers: %s", err)
		}
	}()

	srv, err := web.NewServer(c.LabelingService, web.Options{
		Mode:       web.Mode(cfg.ResponseMode),
		FieldName:  web.DefaultFieldName,
		MaxBytes:   cfg.MaxUploadBytes,
		UploadsDir: c.UploadsDir,
	})
	if err != nil {
		return err
	}

	var bot *telegram.Bot
	if cfg.TelegramToken != "" {
		bot, err = telegram.NewBot(cfg.TelegramToken, c)
		if err != nil {
			return err
		}
	}

	errc := make(chan error, 2)
	go func() {
		errc <- srv.Start(cfg.Addr())
	}()

	if bot != nil {
		log.Info("telegram bot is running")
		go func() {
			errc <- bot.Run(ctx)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case runErr = <-errc:
		if runErr == nil {
			runErr = errors.New("server stopped unexpectedly")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("http shutdown: %s", err)
	}
	return runErr
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/lonng/tickwheel/config"
	"github.com/lonng/tickwheel/internal/log"
	"github.com/lonng/tickwheel/loop"
	"github.com/lonng/tickwheel/monitor"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal("Tickhost exited.", err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Name = "tickhost"
	app.Version = "0.1.0"
	app.Copyright = "tickwheel authors reserved"
	app.Usage = "frame loop host for the tickwheel timer scheduler"

	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "yaml config file, defaults are used when empty",
	}

	app.Commands = []*cli.Command{
		{
			Name:  "run",
			Usage: "run the frame loop with demo timers",
			Flags: []cli.Flag{
				configFlag,
				&cli.StringFlag{
					Name:  "listen",
					Usage: "monitor address, overrides monitor.listen",
				},
				&cli.DurationFlag{
					Name:  "duration",
					Usage: "stop after the duration, 0 waits for a signal",
				},
				&cli.BoolFlag{
					Name:  "watch",
					Usage: "reload log settings when the config file changes",
				},
				&cli.BoolFlag{
					Name:  "demo",
					Value: true,
					Usage: "schedule demo owners and timers",
				},
			},
			Action: run,
		},
		{
			Name:   "check-config",
			Usage:  "validate a config file and print the resolved values",
			Flags:  []cli.Flag{configFlag},
			Action: checkConfig,
		},
	}

	return app
}

func loadConfig(ctx *cli.Context) (*config.Config, error) {
	path := ctx.String("config")
	if path == "" {
		return config.Parse(nil)
	}
	return config.Load(path)
}

func checkConfig(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	out := ctx.App.Writer
	fmt.Fprintf(out, "wheel:   name=%v slots=%v tick=%v max_pooled=%v\n", cfg.Wheel.Name, cfg.Wheel.Slots, cfg.Tick(), cfg.Wheel.MaxPooled)
	fmt.Fprintf(out, "loop:    frame=%v\n", cfg.Frame())
	fmt.Fprintf(out, "monitor: listen=%q interval=%v\n", cfg.Monitor.Listen, cfg.Interval())
	fmt.Fprintf(out, "faults:  per_second=%v burst=%v\n", cfg.Faults.PerSecond, cfg.Faults.Burst)
	fmt.Fprintf(out, "log:     level=%v format=%v debug=%v\n", cfg.Log.Level, cfg.Log.Format, cfg.Log.Debug)
	return nil
}

func run(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	cfg.Apply()

	l := loop.New(cfg.Wheel.Name, nil, cfg.Frame(), cfg.WheelOptions()...)
	l.Start()
	defer l.Close()

	listen := cfg.Monitor.Listen
	if ctx.IsSet("listen") {
		listen = ctx.String("listen")
	}
	if listen != "" {
		srv := monitor.NewServer(l.Wheel(), cfg.Interval())
		if _, err := srv.Start(listen); err != nil {
			return err
		}
		//goland:noinspection GoUnhandledErrorResult
		defer srv.Close()
	}

	if ctx.Bool("demo") {
		l.Execute(func() { startDemo(l) })
	}

	if path := ctx.String("config"); path != "" && ctx.Bool("watch") {
		watchCtx, cancel := context.WithCancel(ctx.Context)
		defer cancel()
		go func() {
			err := config.Watch(watchCtx, path, func(c *config.Config) {
				c.Apply()
				log.Info("Tickhost reloaded log settings from %v.", path)
			})
			if err != nil {
				log.Error("Tickhost config watch stopped.", err)
			}
		}()
	}

	log.Info("Tickhost [%v] running, frame %v, tick %v.", cfg.Wheel.Name, cfg.Frame(), cfg.Tick())
	notify(daemon.SdNotifyReady)

	chSignal := make(chan os.Signal, 1)
	signal.Notify(chSignal, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(chSignal)

	var chTimeout <-chan time.Time
	if d := ctx.Duration("duration"); d > 0 {
		chTimeout = time.After(d)
	}

	select {
	case sig := <-chSignal:
		log.Info("Tickhost received %v, shutting down.", sig)
	case <-chTimeout:
		log.Info("Tickhost duration elapsed, shutting down.")
	}

	notify(daemon.SdNotifyStopping)
	stats := l.Wheel().Stats()
	log.Info("Tickhost stopped, frames %v, fired %v, faults %v, live %v.", l.Frames(), stats.Fired, stats.Faults, stats.Live)
	return nil
}

// notify 运行在 systemd 下时上报状态, 其他环境忽略
func notify(state string) {
	if _, err := daemon.SdNotify(false, state); err != nil {
		log.Error("Tickhost sd_notify %q failed.", state, err)
	}
}

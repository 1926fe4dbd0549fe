// Command river-swww sets each River output's wallpaper from its focused tag,
// waiting for the tag to settle before calling swww.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sweeney/river-swww/internal/bedload"
	"github.com/sweeney/river-swww/internal/config"
	"github.com/sweeney/river-swww/internal/logging"
	"github.com/sweeney/river-swww/internal/logic"
	"github.com/sweeney/river-swww/internal/metrics"
	"github.com/sweeney/river-swww/internal/mqtt"
	"github.com/sweeney/river-swww/internal/status"
	"github.com/sweeney/river-swww/internal/swww"
	"github.com/sweeney/river-swww/internal/web"
)

// observationBuffer bounds the channel between the source and the loop.
// A full buffer blocks the source, so nothing is dropped or reordered.
const observationBuffer = 64

// reapTimeout caps how long shutdown waits for running swww processes.
const reapTimeout = 2 * time.Second

type options struct {
	configPath  string
	debounce    time.Duration
	heartbeat   time.Duration
	broker      string
	httpAddr    string
	logLevel    string
	printConfig bool
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		logging.NewLogger("main").Fatalf("fatal: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "river-swww",
		Short:         "Per-output wallpapers for River, applied with swww",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	f.DurationVar(&opts.debounce, "debounce", logic.DefaultDebounce, "how long a wallpaper must stay wanted before it is applied")
	f.DurationVar(&opts.heartbeat, "heartbeat", 0, "heartbeat interval (0 to disable)")
	f.StringVar(&opts.broker, "mqtt-broker", "", "MQTT broker URL (empty to disable)")
	f.StringVar(&opts.httpAddr, "http", "", "HTTP status address (empty to disable)")
	f.StringVar(&opts.logLevel, "log-level", "", "log level (overrides RIVER_SWWW_LOG_LEVEL)")
	f.BoolVar(&opts.printConfig, "print-config", false, "print the resolved config and exit")

	cmd.AddCommand(newSchemaCmd())
	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Schema()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

func run(ctx context.Context, opts options, stdout io.Writer) error {
	if opts.logLevel != "" {
		if err := logging.SetLevel(opts.logLevel); err != nil {
			return err
		}
	}
	if opts.debounce <= 0 {
		return fmt.Errorf("--debounce must be positive, got %v", opts.debounce)
	}
	log := logging.NewLogger("river-swww")

	path := opts.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if opts.printConfig {
		out, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(stdout, "# %s\n%s\n", path, out)
		return err
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		ConfigPath:  path,
		DebounceMs:  opts.debounce.Milliseconds(),
		HeartbeatMs: opts.heartbeat.Milliseconds(),
		Broker:      opts.broker,
		HTTPAddr:    opts.httpAddr,
		Default:     cfg.Default,
		Tags:        len(cfg.Tags),
	})

	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if opts.broker != "" {
		p, err := mqtt.NewRealPublisher(opts.broker, logging.NewLogger("mqtt"))
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer p.Close()
		publisher, mqttStatus = p, p
	}

	applier := swww.NewRealApplier(logging.NewLogger("swww"), cfg.ExtraArgs(), recordExit(tracker))

	if publisher != nil {
		snap := tracker.Snapshot()
		err := publisher.PublishSystem(mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      mqtt.EventStartup,
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, mqtt.EventStartup, ""),
		})
		if err != nil {
			log.Warnf("failed to publish startup event: %v", err)
		}
	}

	if opts.httpAddr != "" {
		srv := web.New(opts.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Infof("http status server listening on %s", opts.httpAddr)
	}

	log.Infof("started: config=%s debounce=%v tags=%d heartbeat=%v", path, opts.debounce, len(cfg.Tags), opts.heartbeat)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	c := &coalescer{
		resolver:   logic.NewResolver(cfg.Tags, cfg.Default),
		table:      logic.NewTable(opts.debounce),
		applier:    applier,
		publisher:  publisher,
		mqttStatus: mqttStatus,
		tracker:    tracker,
		heartbeat:  opts.heartbeat,
		clock:      clockwork.NewRealClock(),
		log:        log,
	}
	err = runGroup(ctx, bedload.NewRealSource(logging.NewLogger("bedload")), c, sigCh)
	signal.Stop(sigCh)
	if !applier.WaitTimeout(reapTimeout) {
		log.Warnf("swww still running after %v, exiting anyway", reapTimeout)
	}
	return err
}

// recordExit counts each started swww once, when it exits.
func recordExit(tracker *status.Tracker) swww.ExitFunc {
	return func(output, path string, err error) {
		if err != nil {
			tracker.ExitFailed(output, err)
			metrics.AppliesTotal.WithLabelValues(metrics.StatusExitError).Inc()
			return
		}
		metrics.AppliesTotal.WithLabelValues(metrics.StatusOK).Inc()
	}
}

// runGroup runs the source and the loop until either finishes. A source
// error cancels the loop and is returned; a signal is a clean exit.
func runGroup(ctx context.Context, src bedload.Source, c *coalescer, sig <-chan os.Signal) error {
	obs := make(chan logic.Observation, observationBuffer)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(obs)
		return src.Run(gctx, obs)
	})
	g.Go(func() error {
		return c.run(gctx, obs, sig)
	})

	err := g.Wait()
	if errors.Is(err, errShutdown) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

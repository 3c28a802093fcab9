// Authflow-server serves the login, registration and password reset screens.
//
// Usage:
//
//	authflow-server serve [flags]
//
// See 'authflow-server serve --help' for available options.
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/harrylevesque/authflow/internal/api"
	"github.com/harrylevesque/authflow/internal/auth"
	"github.com/harrylevesque/authflow/internal/certs"
	"github.com/harrylevesque/authflow/internal/config"
	"github.com/harrylevesque/authflow/internal/notify"
	"github.com/harrylevesque/authflow/internal/telemetry"
	"github.com/harrylevesque/authflow/internal/utils"
	"github.com/harrylevesque/authflow/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "authflow-server",
	Short:   "AuthFlow auth screens server",
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var (
	configPath string
	addr       string
	logLevel   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the AuthFlow server.

Settings come from the YAML file given by --config, then AUTHFLOW_* environment
variables, then the flags below. Without a session key file an ephemeral key is
generated and sessions do not survive a restart; create one with gensessionkey.

Send SIGHUP to reopen the log file.`,
	Example: `  # Defaults: :8080, fixtures user@example.com / password123
  authflow-server serve

  # Custom config and verbose logging
  authflow-server serve --config /etc/authflow.yaml --log-level debug`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", config.DefaultPath, "Path to YAML config file (optional)")
	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if err := utils.InitLogger(cfg.LogConfig()); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer utils.CloseLogger()
	log := utils.Named("server")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTelEndpoint, "authflow", version.Version)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("flush traces", zap.Error(err))
		}
	}()

	master, err := sessionKey(cfg, log)
	if err != nil {
		return err
	}

	tlsCerts := certs.NewCertManager(cfg.TLSCert, cfg.TLSKey)
	if err := tlsCerts.Check(); err != nil {
		return err
	}

	srv, err := newServer(ctx, cfg, master, tlsCerts.Enabled())
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	if tlsCerts.Enabled() {
		tlsCfg, leaf, err := tlsCerts.TLSConfig()
		if err != nil {
			return err
		}
		switch {
		case tlsCerts.IsExpired(leaf):
			log.Warn("tls certificate expired", zap.Time("not_after", leaf.NotAfter))
		case tlsCerts.ExpiresWithin(leaf, 14*24*time.Hour):
			log.Warn("tls certificate expires soon", zap.Time("not_after", leaf.NotAfter))
		}
		httpSrv.TLSConfig = tlsCfg
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening",
			zap.String("addr", cfg.Addr),
			zap.Bool("tls", tlsCerts.Enabled()),
			zap.String("version", version.Version))
		var err error
		if httpSrv.TLSConfig != nil {
			err = httpSrv.ListenAndServeTLS("", "")
		} else {
			err = httpSrv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				if err := utils.RotateLog(); err != nil {
					log.Warn("rotate log", zap.Error(err))
				} else {
					log.Info("log file reopened")
				}
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newServer assembles the handlers and router from cfg.
func newServer(ctx context.Context, cfg config.Config, master []byte, secure bool) (http.Handler, error) {
	log := utils.Logger()

	dir, err := auth.NewDirectory(cfg.Accounts, 0)
	if err != nil {
		return nil, err
	}
	tokens := auth.NewTokenIssuer(auth.DeriveKey(master, auth.PurposeResetToken), cfg.ResetTokenTTL)
	handlers := log.Named("auth")

	registration := auth.NewRegistration(cfg.ReservedEmails)
	registration.Latency = cfg.Latency.Registration
	registration.Logger = handlers

	bus := notify.NewBus(notify.DefaultCapacity, cfg.NoticeTTL)
	notices := log.Named("notify")
	bus.Subscribe(func(n notify.Notice) {
		notices.Debug("notice",
			zap.String("kind", string(n.Kind)),
			zap.String("title", n.Title),
			zap.String("audience", n.Audience))
	})

	s, err := api.NewServer(api.Deps{
		Logger:   log.Named("http"),
		Sessions: auth.NewCookieSessions(master, secure, log.Named("session")),
		Bus:      bus,
		Pages:    api.NewPages(0, cfg.PageTTL),
		Login: &auth.Login{
			Directory: dir,
			Latency:   cfg.Latency.Login,
			Logger:    handlers,
		},
		Registration: registration,
		ForgotPassword: &auth.ForgotPassword{
			Tokens:      tokens,
			Outcome:     auth.RandomOutcome(cfg.ForgotSuccessRate),
			BaseURL:     cfg.BaseURL,
			ExposeLinks: cfg.ExposeResetLinks,
			Latency:     cfg.Latency.ForgotPassword,
			Logger:      handlers,
		},
		ResetPassword: &auth.ResetPassword{
			Tokens:  tokens,
			Latency: cfg.Latency.ResetPassword,
			Logger:  handlers,
		},
		BaseContext: ctx,
	})
	if err != nil {
		return nil, err
	}
	return api.NewRouter(s), nil
}

func sessionKey(cfg config.Config, log *zap.Logger) ([]byte, error) {
	hexKey := cfg.SessionKeyHex
	master, err := auth.ReadSessionKey(hexKey, utils.ResolvePath(cfg.SessionKeyFile))
	if err == nil {
		return master, nil
	}
	if hexKey != "" || !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	log.Warn("no session key found, using an ephemeral key", zap.String("file", cfg.SessionKeyFile))
	master = make([]byte, 32)
	if _, err := rand.Read(master); err != nil {
		return nil, err
	}
	return master, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("authflow-server %s (commit: %s)\n", version.Version, version.Commit)
	},
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/eventdesk/internal/profile"
	"github.com/hrygo/eventdesk/server"
	"github.com/hrygo/eventdesk/server/auth"
	"github.com/hrygo/eventdesk/store"
	"github.com/hrygo/eventdesk/store/cache"
	"github.com/hrygo/eventdesk/store/db"
)

const version = "0.1.0"

var (
	rootCmd = &cobra.Command{
		Use:   "eventdesk",
		Short: `A small site for events, clients and contact requests, served from an in-memory cache.`,
		Run: func(_ *cobra.Command, _ []string) {
			if err := run(); err != nil {
				slog.Error("eventdesk exited with error", slog.String("error", err.Error()))
				os.Exit(1)
			}
		},
	}

	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Print an admin API token signed with the configured secret",
		RunE: func(cmd *cobra.Command, _ []string) error {
			instanceProfile := newProfile()
			if err := instanceProfile.Validate(); err != nil {
				return err
			}
			ttl, err := cmd.Flags().GetDuration("ttl")
			if err != nil {
				return err
			}
			token, err := auth.GenerateAdminToken(instanceProfile.Secret, time.Now(), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
)

func newProfile() *profile.Profile {
	instanceProfile := &profile.Profile{
		Mode:        viper.GetString("mode"),
		Addr:        viper.GetString("addr"),
		Port:        viper.GetInt("port"),
		Data:        viper.GetString("data"),
		Driver:      viper.GetString("driver"),
		DSN:         viper.GetString("dsn"),
		Secret:      viper.GetString("secret"),
		InstanceURL: viper.GetString("instance-url"),
		Version:     version,
	}
	instanceProfile.FromEnv()
	return instanceProfile
}

// run is the composition root: it builds the single cache instance and
// hands it to every consumer.
func run() error {
	instanceProfile := newProfile()
	if err := instanceProfile.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	cacheStore, err := cache.New(instanceProfile.CacheConfig(),
		cache.WithLogger(slog.Default().With(slog.String("component", "cache"))),
		cache.WithMetrics(registry, "store"),
	)
	if err != nil {
		return err
	}
	defer cacheStore.Close()

	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		return err
	}
	storeInstance := store.New(dbDriver, cacheStore)
	if err := storeInstance.Migrate(ctx); err != nil {
		_ = storeInstance.Close()
		return err
	}
	if err := storeInstance.WarmUp(ctx); err != nil {
		slog.Warn("failed to warm up cache", slog.String("error", err.Error()))
	}

	s, err := server.NewServer(instanceProfile, storeInstance, cacheStore, registry)
	if err != nil {
		_ = storeInstance.Close()
		return err
	}

	c := make(chan os.Signal, 1)
	// Trigger graceful shutdown on SIGINT or SIGTERM.
	// The default signal sent by the `kill` command is SIGTERM,
	// which is taken as the graceful shutdown signal for many systems, eg., Kubernetes, Gunicorn.
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	if err := s.Start(ctx); err != nil {
		_ = storeInstance.Close()
		return err
	}
	printGreetings(instanceProfile)

	go func() {
		<-c
		s.Shutdown(ctx)
		cancel()
	}()

	// Wait for CTRL-C.
	<-ctx.Done()
	return nil
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 8081)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver")
	rootCmd.PersistentFlags().String("dsn", "", "database source name(aka. DSN)")
	rootCmd.PersistentFlags().String("secret", "", "secret used to sign admin tokens")
	rootCmd.PersistentFlags().String("instance-url", "", "the url of your eventdesk instance")

	for _, name := range []string{"mode", "addr", "port", "data", "driver", "dsn", "secret", "instance-url"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("eventdesk")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	tokenCmd.Flags().Duration("ttl", 30*24*time.Hour, "token lifetime, 0 for a token that never expires")
	rootCmd.AddCommand(tokenCmd)
}

func printGreetings(profile *profile.Profile) {
	fmt.Printf("eventdesk %s started successfully!\n", profile.Version)

	if profile.IsDev() {
		fmt.Fprint(os.Stderr, "Development mode is enabled\n")
		if profile.DSN != "" {
			fmt.Fprintf(os.Stderr, "Database: %s\n", profile.DSN)
		}
	}

	fmt.Printf("Data directory: %s\n", profile.Data)
	fmt.Printf("Server running on port %d\n", profile.Port)
	fmt.Printf("Cache: max %d entries, default TTL %s\n", profile.CacheMaxSize, profile.CacheDefaultTTL)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/pitwall/internal/api"
	"github.com/banshee-data/pitwall/internal/config"
	"github.com/banshee-data/pitwall/internal/db"
	"github.com/banshee-data/pitwall/internal/monitoring"
	"github.com/banshee-data/pitwall/internal/version"
	"github.com/banshee-data/pitwall/internal/views"
)

var (
	configPath  = flag.String("config", config.DefaultConfigPath, "Path to JSON database config")
	devMode     = flag.Bool("dev", false, "Use an embedded sqlite database seeded with a sample season")
	listen      = flag.String("listen", ":8080", "Listen address")
	dbPath      = flag.String("db-path", "", "Embedded database path (implies the sqlite driver)")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: pitwall [flags] [command]\n\n")
	fmt.Fprintf(out, "Without a command pitwall serves the dashboard on -listen.\n\n")
	fmt.Fprintf(out, "Commands:\n")
	fmt.Fprintf(out, "  show <section>                          print a section (%s)\n", sectionSlugs())
	fmt.Fprintf(out, "  results <add|points|swap|delete|recalc> run a results command\n")
	fmt.Fprintf(out, "  admin create-user <name> <password> <privilege>\n")
	fmt.Fprintf(out, "  migrate <up|down|status|version|force>  manage the embedded schema\n\n")
	fmt.Fprintf(out, "Flags:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Current())
		return
	}
	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	cfg, err := resolveConfig(*configPath, *devMode, *dbPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	args := flag.Args()
	migrating := len(args) > 0 && args[0] == "migrate"

	// migrate inspects the schema as found; everything else in dev mode
	// brings it up to date first
	var database *db.DB
	if *devMode && !migrating {
		database, err = db.OpenDev(cfg.GetSQLitePath())
	} else {
		database, err = db.Open(cfg)
	}
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if migrating {
		if err := db.RunMigrateCommand(database, args[1:], os.Stdin, os.Stdout); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		return
	}

	router := views.NewRouter(database, views.QueriesFor(database.Dialect()))
	if len(args) > 0 {
		// quiet the gateway's own logging on the terminal
		monitoring.SetLogger(nil)
		if err := runCommand(ctx, router, args, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := serve(ctx, database, router); err != nil {
		log.Fatalf("server error: %v", err)
	}
	log.Printf("Graceful shutdown complete")
}

// resolveConfig applies the flags over the config file. -dev and -db-path
// both select the embedded backend and skip the file.
func resolveConfig(path string, dev bool, sqlitePath string) (*config.DatabaseConfig, error) {
	if dev || sqlitePath != "" {
		if sqlitePath == "" {
			sqlitePath = config.EmptyConfig().GetSQLitePath()
		}
		cfg := config.DevConfig(sqlitePath)
		return cfg, cfg.Validate()
	}
	return config.LoadOrDefault(path)
}

func serve(ctx context.Context, database *db.DB, router *views.Router) error {
	mux := api.NewServer(router).ServeMux()
	if err := database.AttachAdminRoutes(mux); err != nil {
		return fmt.Errorf("attach admin routes: %w", err)
	}

	server := &http.Server{
		Addr:              *listen,
		Handler:           api.LoggingMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          monitoring.NewStdLogger("http: "),
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("serving %s on %s", database.Config().Label(), *listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}
	return nil
}

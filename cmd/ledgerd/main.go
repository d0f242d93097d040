// Command ledgerd runs the gridveil metering ledger service.
//
// The service accepts encrypted charging-session submissions, folds their
// ciphertexts into per-window aggregates homomorphically, and brokers
// decryption requests to the oracle. Decryption results arrive back through
// the oracle callback endpoint, are proof-verified, and become queryable
// revealed results.
//
// # Oracle
//
// By default ledgerd embeds a local decryption oracle holding the BGV
// secret keys and a proof-signing key, delivering results on a timer. This
// is the single-operator deployment; a production split would run the
// oracle behind its own service and point its callbacks at
// POST /oracle/callback.
//
// # Persistence
//
// With --postgres-host set, state is kept in PostgreSQL and survives
// restarts. Without it an in-memory store is used.
//
// # Usage
//
//	go run ./cmd/ledgerd --addr=:8080
//	go run ./cmd/ledgerd --addr=:8080 --postgres-host=localhost --postgres-password=secret
//	go run ./cmd/ledgerd --strict-delivery --allow-callers=grid-operator,city-planning
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voltaic-labs/gridveil/api/httpserver"
	"github.com/voltaic-labs/gridveil/cmd/common"
	"github.com/voltaic-labs/gridveil/fhe"
	"github.com/voltaic-labs/gridveil/ledger"
	"github.com/voltaic-labs/gridveil/services"
)

func main() {
	var (
		addr           = flag.String("addr", ":8080", "HTTP listen address")
		logLevel       = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		enablePprof    = flag.Bool("pprof", false, "Enable pprof debugging endpoints")
		signingKeyHex  = flag.String("signing-key", "", "Ed25519 proof-signing key (hex, generates if empty)")
		oracleInterval = flag.Duration("oracle-interval", 2*time.Second, "Local oracle delivery interval")
		strictDelivery = flag.Bool("strict-delivery", false, "Reject repeat deliveries for an already revealed request")
		allowCallers   = flag.String("allow-callers", "", "Comma-separated callers permitted to request site suggestions (empty allows all)")
		webhookURL     = flag.String("webhook-url", "", "Endpoint for fire-and-forget event notifications")

		pgHost     = flag.String("postgres-host", "", "PostgreSQL host (empty uses in-memory store)")
		pgPort     = flag.Int("postgres-port", 5432, "PostgreSQL port")
		pgUser     = flag.String("postgres-user", "gridveil", "PostgreSQL user")
		pgPassword = flag.String("postgres-password", "", "PostgreSQL password")
		pgDatabase = flag.String("postgres-db", "gridveil", "PostgreSQL database name")
	)
	flag.Parse()

	log, err := common.NewLogger(*logLevel)
	if err != nil {
		fmt.Printf("Logger error: %v\n", err)
		os.Exit(1)
	}

	signingKey, err := common.LoadOrGenerateSigningKey(*signingKeyHex)
	if err != nil {
		fmt.Printf("Signing key error: %v\n", err)
		os.Exit(1)
	}

	params, err := fhe.DefaultParams()
	if err != nil {
		fmt.Printf("Parameter error: %v\n", err)
		os.Exit(1)
	}
	keys := fhe.GenKeySet(params)

	oracle, err := fhe.NewLocalOracle(params, keys, signingKey,
		fhe.WithDeliveryInterval(*oracleInterval),
		fhe.WithLogger(log))
	if err != nil {
		fmt.Printf("Oracle error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Oracle proof key: %s\n", oracle.PublicKey().String())

	var store ledger.Store
	var pgStore *services.PostgresStore
	if *pgHost != "" {
		pgStore, err = services.NewPostgresStore(&services.PostgresConfig{
			Host:     *pgHost,
			Port:     *pgPort,
			User:     *pgUser,
			Password: *pgPassword,
			Database: *pgDatabase,
		})
		if err != nil {
			fmt.Printf("Postgres error: %v\n", err)
			os.Exit(1)
		}
		store = pgStore
		log.Info("Using PostgreSQL store", "host", *pgHost, "database", *pgDatabase)
	} else {
		store = ledger.NewMemoryStore()
		log.Info("Using in-memory store")
	}

	var policy ledger.AuthorizationPolicy
	if callers := common.ParseCallers(*allowCallers); len(callers) > 0 {
		policy = ledger.NewAllowListPolicy(callers...)
	}

	var notifier ledger.Notifier
	if *webhookURL != "" {
		notifier = services.NewWebhookNotifier(*webhookURL, log)
	} else {
		notifier = ledger.LogNotifier{Log: log}
	}

	lg, err := ledger.New(&ledger.Config{
		Algebra:              fhe.NewAlgebra(params),
		Oracle:               oracle,
		Store:                store,
		Policy:               policy,
		Notifier:             notifier,
		RejectRepeatDelivery: *strictDelivery,
		Log:                  log,
	})
	if err != nil {
		fmt.Printf("Ledger error: %v\n", err)
		os.Exit(1)
	}
	oracle.Bind(lg.Deliver)

	srv, err := httpserver.New(&httpserver.HTTPServerConfig{
		ListenAddr:               *addr,
		EnablePprof:              *enablePprof,
		Log:                      log,
		DrainDuration:            5 * time.Second,
		GracefulShutdownDuration: 10 * time.Second,
		ReadTimeout:              15 * time.Second,
		WriteTimeout:             15 * time.Second,
	}, services.NewHTTPLedger(lg, log))
	if err != nil {
		fmt.Printf("Server error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	oracle.Start(ctx)
	srv.RunInBackground()
	fmt.Printf("Ledger listening on %s (strict-delivery=%v)\n", *addr, *strictDelivery)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("Shutting down ledger...")
	cancel()
	srv.Shutdown()
	if pgStore != nil {
		if err := pgStore.Close(); err != nil {
			log.Error("Closing store failed", "err", err)
		}
	}
}

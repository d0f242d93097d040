// Command demo runs an in-process walkthrough of the metering ledger.
//
// It wires a ledger, a BGV encryptor and a local decryption oracle
// together without any HTTP layer, submits a handful of encrypted
// charging sessions, aggregates them into one window, and reveals a
// demand forecast, a load-balance decision and a site suggestion.
//
//	go run ./cmd/demo
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/voltaic-labs/gridveil/crypto"
	"github.com/voltaic-labs/gridveil/fhe"
	"github.com/voltaic-labs/gridveil/ledger"
)

type session struct {
	station  uint64
	start    uint64
	duration uint64
	energy   uint64
}

func run() error {
	var window = flag.String("window", "2026-08-29T10", "Window key to aggregate under")
	flag.Parse()

	fmt.Println("Generating BGV parameters and keys (this takes a moment)...")
	params, err := fhe.DefaultParams()
	if err != nil {
		return err
	}
	keys := fhe.GenKeySet(params)

	_, signingKey, err := crypto.GenerateKeyPair()
	if err != nil {
		return err
	}

	oracle, err := fhe.NewLocalOracle(params, keys, signingKey)
	if err != nil {
		return err
	}

	lg, err := ledger.New(&ledger.Config{
		Algebra: fhe.NewAlgebra(params),
		Oracle:  oracle,
	})
	if err != nil {
		return err
	}
	oracle.Bind(lg.Deliver)

	enc, err := fhe.NewEncryptor(params, keys.Public())
	if err != nil {
		return err
	}

	ctx := context.Background()
	sessions := []session{
		{station: 3, start: 10, duration: 2, energy: 40},
		{station: 7, start: 10, duration: 1, energy: 25},
		{station: 3, start: 11, duration: 3, energy: 55},
	}

	one, err := enc.EncryptNarrow(1)
	if err != nil {
		return err
	}

	key := ledger.WindowKey(*window)
	for _, s := range sessions {
		station, err := enc.EncryptNarrow(s.station)
		if err != nil {
			return err
		}
		start, err := enc.EncryptNarrow(s.start)
		if err != nil {
			return err
		}
		duration, err := enc.EncryptNarrow(s.duration)
		if err != nil {
			return err
		}
		energy, err := enc.EncryptWide(s.energy)
		if err != nil {
			return err
		}

		id, err := lg.SubmitSession(station, start, duration, energy)
		if err != nil {
			return err
		}
		fmt.Printf("Submitted session #%d (station %d, %d kWh encrypted)\n", id, s.station, s.energy)

		if err := lg.Accumulate(key, one, energy); err != nil {
			return err
		}
	}

	forecastID, err := lg.RequestDemandForecast(ctx, key)
	if err != nil {
		return err
	}
	fmt.Printf("Demand forecast requested: %s\n", forecastID)

	priority, err := enc.EncryptNarrow(9)
	if err != nil {
		return err
	}
	balanceID, err := lg.RequestLoadBalance(ctx, key, priority)
	if err != nil {
		return err
	}
	fmt.Printf("Load-balance decision requested: %s\n", balanceID)

	demand, err := enc.EncryptWide(300)
	if err != nil {
		return err
	}
	stations, err := enc.EncryptNarrow(12)
	if err != nil {
		return err
	}
	suggestionID, err := lg.RequestSiteSuggestion(ctx, "grid-operator", "downtown", demand, stations)
	if err != nil {
		return err
	}
	fmt.Printf("Site suggestion requested: %s\n", suggestionID)

	fmt.Println("Flushing oracle deliveries...")
	if err := oracle.Flush(ctx); err != nil {
		return err
	}

	for _, id := range []ledger.RequestID{forecastID, balanceID, suggestionID} {
		label, payload, revealed := lg.Result(id)
		if !revealed {
			return fmt.Errorf("request %s was not revealed", id)
		}
		fmt.Printf("Revealed %-15s %s\n", label+":", payload)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Printf("Demo error: %v\n", err)
		os.Exit(1)
	}
}

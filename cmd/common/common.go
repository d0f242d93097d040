// Package common provides shared utilities for gridveil CLI commands.
//
// This package contains helper functions used across the standalone service
// binaries (ledgerd, demo) to reduce code duplication:
//
//   - Key loading and generation for Ed25519 proof-signing keys
//   - Structured logger construction
//   - Caller allow-list parsing
package common

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/voltaic-labs/gridveil/crypto"
	"github.com/voltaic-labs/gridveil/ledger"
)

// LoadOrGenerateSigningKey loads an Ed25519 private key from a hex string,
// or generates a new key pair if hexKey is empty.
func LoadOrGenerateSigningKey(hexKey string) (crypto.PrivateKey, error) {
	if hexKey != "" {
		keyBytes, err := hex.DecodeString(hexKey)
		if err != nil {
			return nil, fmt.Errorf("invalid hex: %w", err)
		}
		return crypto.NewPrivateKeyFromBytes(keyBytes), nil
	}
	_, privKey, err := crypto.GenerateKeyPair()
	return privKey, err
}

// NewLogger creates a structured text logger writing to stderr at the
// given level name (debug, info, warn, error).
func NewLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "", "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

// ParseCallers splits a comma-separated caller list into ledger callers.
// An empty input yields an empty list.
func ParseCallers(list string) []ledger.Caller {
	var callers []ledger.Caller
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			callers = append(callers, ledger.Caller(part))
		}
	}
	return callers
}

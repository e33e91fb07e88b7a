package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/x402chainpay/client-go/internal/client"
	"github.com/x402chainpay/client-go/internal/config"
	apperrors "github.com/x402chainpay/client-go/internal/errors"
	"github.com/x402chainpay/client-go/internal/model"
	"github.com/x402chainpay/client-go/internal/telemetry"
)

const usage = `Usage: x402ctl <command> [args] [flags]

Flags may come before or after positional arguments.

Commands:
  health                 check backend liveness
  options                list payment options
  session <id>           validate a session
  sessions               list active sessions
  payments               list payment history
  buy-session [flags]    purchase 24-hour session access
  buy-onetime [flags]    purchase one-time access

Purchase flags:
  -wallet string         wallet address
  -tx string             transaction hash
  -meta key=value        metadata entry (repeatable)
  -validate              validate response shapes

Environment:
  X402_API_BASE_URL, X402_PROD, X402_MODE, X402_LOG_LEVEL
`

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "help" {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		return 1
	}
	setLogLevel(cfg.LogLevel)
	cfg.Validate()

	shutdownTelemetry := telemetry.Setup("x402ctl", cfg.Telemetry)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.TelemetryShutdownTimeout)
		defer cancel()
		_ = shutdownTelemetry(shutdownCtx)
	}()

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)
	wallet := fs.String("wallet", "", "wallet address")
	txHash := fs.String("tx", "", "transaction hash")
	validate := fs.Bool("validate", false, "validate response shapes")
	meta := metadataFlag{}
	fs.Var(meta, "meta", "metadata entry key=value (repeatable)")

	positional, err := parseArgs(fs, args[1:])
	if err != nil {
		return 2
	}
	if args[0] != "session" && len(positional) > 0 {
		fmt.Fprintf(stderr, "%s takes no arguments, got %q\n", args[0], positional)
		return 2
	}

	var opts []client.Option
	if *validate {
		opts = append(opts, client.WithResponseValidation())
	}
	api := client.New(cfg.BaseURL(), opts...)

	log.Debug().Str("base_url", api.BaseURL()).Str("command", args[0]).Msg("running command")

	payload := model.PaymentRequestPayload{
		WalletAddress:   *wallet,
		TransactionHash: *txHash,
	}
	if len(meta) > 0 {
		payload.Metadata = meta
	}

	var result any
	switch args[0] {
	case "health":
		result, err = api.GetHealth(ctx)
	case "options":
		result, err = api.GetPaymentOptions(ctx)
	case "session":
		if len(positional) != 1 {
			fmt.Fprintln(stderr, "session requires exactly one session id")
			return 2
		}
		result, err = api.ValidateSession(ctx, positional[0])
	case "sessions":
		result, err = api.GetActiveSessions(ctx)
	case "payments":
		result, err = api.GetPayments(ctx)
	case "buy-session":
		result, err = api.Purchase24HourSession(ctx, payload)
	case "buy-onetime":
		result, err = api.PurchaseOneTimeAccess(ctx, payload)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	if err != nil {
		event := log.Error().Err(err).Str("command", args[0])
		if status := apperrors.StatusCode(err); status != 0 {
			event = event.Int("status", status)
		}
		event.Msg("request failed")
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Error().Err(err).Msg("failed to write output")
		return 1
	}
	return 0
}

// parseArgs parses flags wherever they appear and returns the positional
// arguments in order. The standard flag package stops at the first
// non-flag, which would silently drop `session <id> -validate`.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// metadataFlag collects repeated -meta key=value pairs.
type metadataFlag map[string]any

func (m metadataFlag) String() string {
	parts := make([]string, 0, len(m))
	for k, v := range m {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(parts, ",")
}

func (m metadataFlag) Set(value string) error {
	key, val, ok := strings.Cut(value, "=")
	if !ok || key == "" {
		return fmt.Errorf("metadata must be key=value, got %q", value)
	}
	m[key] = val
	return nil
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

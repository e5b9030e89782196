package execution

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/punishbig2/StreamSystems-sub002/internal/event"
	"github.com/punishbig2/StreamSystems-sub002/internal/infra"
)

// Mode represents the order-entry mode
type Mode string

const (
	ModeMock Mode = "MOCK"
	ModeSim  Mode = "SIM"
	ModeLive Mode = "LIVE"
)

// Factory creates execution instances based on the configured mode.
type Factory struct {
	config *infra.Config
	inbox  chan<- event.Event
	seq    *uint64
}

// NewFactory creates a new factory. inbox and seq feed the simulated broker;
// the live gateway ignores them because real acks come from the feed.
func NewFactory(cfg *infra.Config, inbox chan<- event.Event, seq *uint64) *Factory {
	return &Factory{config: cfg, inbox: inbox, seq: seq}
}

// CreateExecution returns the appropriate Execution implementation
func (f *Factory) CreateExecution() (Execution, error) {
	mode := Mode(f.config.Trading.Mode)

	slog.Info("Initializing Execution System", "mode", mode)

	switch mode {
	case ModeMock:
		return NewMockExecution(), nil

	case ModeSim:
		slog.Info("🔒 Order entry routed to internal simulator")
		return NewSimExecution(f.inbox, f.seq), nil

	case ModeLive:
		// SAFETY LATCH CHECK
		if os.Getenv("CONFIRM_LIVE_TRADING") != "true" {
			err := fmt.Errorf("SAFETY_GUARD: live order entry requires 'CONFIRM_LIVE_TRADING=true' environment variable")
			slog.Error(err.Error())
			panic(err) // Fail Fast
		}

		slog.Info("🚨🚨🚨 Order entry routed to LIVE broker 🚨🚨🚨")

		accessKey := f.config.Broker.AccessKey
		secretKey := f.config.Broker.SecretKey
		if path := os.Getenv("FXPODS_SECRETS"); path != "" {
			secrets, err := infra.LoadSecretConfig(path)
			if err != nil {
				return nil, err
			}
			accessKey = secrets.Broker.AccessKey
			secretKey = secrets.Broker.SecretKey
		}

		signer := NewSigner(accessKey, secretKey)
		return NewRESTExecution(f.config.Broker.RestURL, signer), nil

	default:
		return nil, fmt.Errorf("unknown execution mode: %s", mode)
	}
}

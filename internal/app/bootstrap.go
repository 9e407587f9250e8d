package app

import (
	"log/slog"

	"energy_go/internal/infra"
	"energy_go/internal/infra/storage"
	"energy_go/internal/ledger"
	"energy_go/internal/payment"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config   *infra.Config
	Storage  *storage.Storage
	Payments *payment.MemoryLedger
	Market   *ledger.Market
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, DB, ledger).
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping Energy Go...")

	// 1. Load Config
	cfg, err := infra.LoadConfig("configs/config.yaml")
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized")

	// 4. Settlement ledger (in-process account book)
	b.Payments = payment.NewMemoryLedger()

	// 5. Market ledger, restored from storage
	b.Market = ledger.NewMarket(cfg.Market.Admin, b.Payments)
	if err := b.Market.AttachStore(store); err != nil {
		return err
	}
	slog.Info("✅ Market ledger restored",
		slog.Uint64("transactions", b.Market.TotalTransactions()),
		slog.Int("active_listings", b.Market.ActiveListingCount()))

	return nil
}

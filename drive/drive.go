// Package drive is the shared business logic layer: the encrypted upload
// and retrieval pipelines, folder management and folder-tree
// reconstruction. Request handlers and the service channel adapter all call
// Drive methods; the metadata store, content store and ledger are injected
// collaborators behind narrow contracts.
package drive

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/chaindrive/libchaindrive-go/config"
	"github.com/chaindrive/libchaindrive-go/content"
	"github.com/chaindrive/libchaindrive-go/ledger"
	"github.com/chaindrive/libchaindrive-go/metadata"
)

// Drive bundles the collaborators one node needs to serve requests. All
// methods are safe for concurrent use; the only shared state lives in the
// injected stores.
type Drive struct {
	meta    metadata.Store
	content content.Client
	ledger  ledger.Client
	log     *zap.Logger

	metaCloser io.Closer // set by Open; nil when deps were injected
}

// NewWithDeps creates a Drive from explicitly constructed collaborators.
// A nil logger disables logging.
func NewWithDeps(meta metadata.Store, contentClient content.Client, ledgerClient ledger.Client, log *zap.Logger) *Drive {
	if log == nil {
		log = zap.NewNop()
	}
	return &Drive{
		meta:    meta,
		content: contentClient,
		ledger:  ledgerClient,
		log:     log,
	}
}

// Open wires a Drive from configuration: bolt or postgres metadata,
// local or gateway content store, RPC or in-memory ledger.
func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (*Drive, error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	material, err := metadata.NewMaterialCipher([]byte(cfg.MasterSecret))
	if err != nil {
		return nil, fmt.Errorf("drive: build material cipher: %w", err)
	}

	var (
		meta   metadata.Store
		closer io.Closer
	)
	switch cfg.MetadataBackend {
	case config.BackendPostgres:
		sqlStore, err := metadata.NewSQLStore(ctx, cfg.PostgresDSN, material)
		if err != nil {
			return nil, err
		}
		if err := sqlStore.EnsureSchema(ctx); err != nil {
			_ = sqlStore.Close()
			return nil, err
		}
		meta, closer = sqlStore, sqlStore
	default:
		boltStore, err := metadata.OpenBoltStore(filepath.Join(cfg.DataDir, "metadata.db"), material)
		if err != nil {
			return nil, err
		}
		meta, closer = boltStore, boltStore
	}

	var contentClient content.Client
	if cfg.ContentGatewayURL != "" {
		contentClient = content.NewGatewayClient(content.GatewayConfig{
			BaseURL:   cfg.ContentGatewayURL,
			APIKey:    cfg.ContentAPIKey,
			APISecret: cfg.ContentAPISecret,
		})
	} else {
		fileStore, err := content.NewFileStore(filepath.Join(cfg.DataDir, "content"))
		if err != nil {
			_ = closer.Close()
			return nil, err
		}
		contentClient = fileStore
	}

	var ledgerClient ledger.Client
	if cfg.LedgerURL != "" {
		ledgerClient = ledger.NewRPCClient(ledger.RPCConfig{
			URL:      cfg.LedgerURL,
			User:     cfg.LedgerUser,
			Password: cfg.LedgerPassword,
		})
	} else {
		log.Warn("no ledger configured; anchoring in memory (offline mode)")
		ledgerClient = ledger.NewMemLedger()
	}

	d := NewWithDeps(meta, contentClient, ledgerClient, log)
	d.metaCloser = closer
	return d, nil
}

// Close releases resources held by stores Open created.
func (d *Drive) Close() error {
	if d.metaCloser != nil {
		return d.metaCloser.Close()
	}
	return nil
}

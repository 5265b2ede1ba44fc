package config

import (
	"fmt"
	"time"
)

// ClientApp holds agent-side application settings derived from the shared
// structured config.
type ClientApp struct {
	// Username and Password are the credentials the agent uses to establish
	// its server session when no valid token is present.
	Username string
	Password string
}

// ClientAdapter holds network settings used by the agent transport layer.
type ClientAdapter struct {
	// BaseURL is the server base URL used by the agent.
	BaseURL string
	// RequestTimeout is the default timeout for outbound agent requests.
	RequestTimeout time.Duration
}

// ClientDBView contains local database connection settings for the agent.
type ClientDBView struct {
	// DSN is the SQLite file path of the device-local mirror store.
	DSN string
}

// ClientStorage groups agent storage backend settings.
type ClientStorage struct {
	// DB holds local database settings.
	DB ClientDBView
}

// ClientWorkers contains agent background worker timing settings.
type ClientWorkers struct {
	// FlushDebounce is the quiet period before dirty keys are pushed.
	FlushDebounce time.Duration
	// FlushRetry is the deferred-flush retry interval.
	FlushRetry time.Duration
	// SyncInterval is the background staleness-bounding interval.
	SyncInterval time.Duration
}

// ClientConfig is the top-level agent configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// App contains application-level agent settings.
	App ClientApp
	// Adapter contains agent transport addresses and timeouts.
	Adapter ClientAdapter
	// Storage contains agent storage settings.
	Storage ClientStorage
	// Workers contains background job settings.
	Workers ClientWorkers
}

// GetClientConfig builds and validates an agent-specific config view from the
// merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the agent runtime, and validates the resulting [ClientConfig].
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		App: ClientApp{
			Username: cfg.App.AdminUsername,
			Password: cfg.App.AdminPassword,
		},
		Adapter: ClientAdapter{
			BaseURL:        cfg.Adapter.BaseURL,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Storage: ClientStorage{
			DB: ClientDBView{
				DSN: cfg.Storage.ClientDB.DSN,
			},
		},
		Workers: ClientWorkers{
			FlushDebounce: cfg.Workers.FlushDebounce,
			FlushRetry:    cfg.Workers.FlushRetry,
			SyncInterval:  cfg.Workers.SyncInterval,
		},
	}

	return clientCfg, clientCfg.validate()
}

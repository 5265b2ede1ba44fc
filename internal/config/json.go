package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	App struct {
		AdminUsername     string   `json:"admin_username"`
		AdminPasswordHash string   `json:"admin_password_hash"`
		AdminName         string   `json:"admin_name"`
		TokenSignKey      string   `json:"token_sign_key"`
		TokenIssuer       string   `json:"token_issuer"`
		TokenDuration     Duration `json:"token_duration"`
		AppURL            string   `json:"app_url"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`

		ClientDB struct {
			DSN string `json:"dsn"`
		} `json:"client_db,omitempty"`

		RateLimitPath string `json:"rate_limit_path"`
		BackupPath    string `json:"backup_path"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Mail struct {
		Host          string `json:"host"`
		Port          int    `json:"port"`
		User          string `json:"user"`
		Pass          string `json:"pass"`
		From          string `json:"from"`
		FromName      string `json:"from_name"`
		SecurityEmail string `json:"security_email"`
	} `json:"mail,omitempty"`

	Adapter struct {
		BaseURL        string   `json:"base_url"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"adapter,omitempty"`

	Workers struct {
		FlushDebounce Duration `json:"flush_debounce"`
		FlushRetry    Duration `json:"flush_retry"`
		SyncInterval  Duration `json:"sync_interval"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			AdminUsername:     jsonCfg.App.AdminUsername,
			AdminPasswordHash: jsonCfg.App.AdminPasswordHash,
			AdminName:         jsonCfg.App.AdminName,
			TokenSignKey:      jsonCfg.App.TokenSignKey,
			TokenIssuer:       jsonCfg.App.TokenIssuer,
			TokenDuration:     time.Duration(jsonCfg.App.TokenDuration),
			AppURL:            jsonCfg.App.AppURL,
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
			ClientDB: ClientDB{
				DSN: jsonCfg.Storage.ClientDB.DSN,
			},
			RateLimitPath: jsonCfg.Storage.RateLimitPath,
			BackupPath:    jsonCfg.Storage.BackupPath,
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Mail: Mail{
			Host:          jsonCfg.Mail.Host,
			Port:          jsonCfg.Mail.Port,
			User:          jsonCfg.Mail.User,
			Pass:          jsonCfg.Mail.Pass,
			From:          jsonCfg.Mail.From,
			FromName:      jsonCfg.Mail.FromName,
			SecurityEmail: jsonCfg.Mail.SecurityEmail,
		},
		Adapter: Adapter{
			BaseURL:        jsonCfg.Adapter.BaseURL,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
		},
		Workers: Workers{
			FlushDebounce: time.Duration(jsonCfg.Workers.FlushDebounce),
			FlushRetry:    time.Duration(jsonCfg.Workers.FlushRetry),
			SyncInterval:  time.Duration(jsonCfg.Workers.SyncInterval),
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Duration is a time.Duration that unmarshals from a JSON string such as
// "30s" or "1h30m".
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler for Duration.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// structuredJSONConfig mirrors [StructuredConfig] with JSON tags and
// string-encoded durations for file-based configuration.
type structuredJSONConfig struct {
	Auth struct {
		HashKey       string   `json:"hash_key"`
		TokenSignKey  string   `json:"token_sign_key"`
		TokenIssuer   string   `json:"token_issuer"`
		TokenDuration Duration `json:"token_duration"`
	} `json:"auth,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
		ClientDB struct {
			DSN string `json:"dsn"`
		} `json:"client_db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Sync struct {
		RetentionWindow Duration `json:"retention_window"`
		CleanupInterval Duration `json:"cleanup_interval"`
		PollInterval    Duration `json:"poll_interval"`
	} `json:"sync,omitempty"`

	Security struct {
		LockoutDuration    Duration `json:"lockout_duration"`
		KeyTTL             Duration `json:"key_ttl"`
		KDFIterations      int      `json:"kdf_iterations"`
		SessionIdleTimeout Duration `json:"session_idle_timeout"`
	} `json:"security,omitempty"`

	Remote struct {
		BaseURL        string   `json:"base_url"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"remote,omitempty"`

	Device struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"device,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg structuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Auth: Auth{
			HashKey:       jsonCfg.Auth.HashKey,
			TokenSignKey:  jsonCfg.Auth.TokenSignKey,
			TokenIssuer:   jsonCfg.Auth.TokenIssuer,
			TokenDuration: time.Duration(jsonCfg.Auth.TokenDuration),
		},
		Storage: Storage{
			DB:       DB{DSN: jsonCfg.Storage.DB.DSN},
			ClientDB: ClientDB{DSN: jsonCfg.Storage.ClientDB.DSN},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Sync: Sync{
			RetentionWindow: time.Duration(jsonCfg.Sync.RetentionWindow),
			CleanupInterval: time.Duration(jsonCfg.Sync.CleanupInterval),
			PollInterval:    time.Duration(jsonCfg.Sync.PollInterval),
		},
		Security: Security{
			LockoutDuration:    time.Duration(jsonCfg.Security.LockoutDuration),
			KeyTTL:             time.Duration(jsonCfg.Security.KeyTTL),
			KDFIterations:      jsonCfg.Security.KDFIterations,
			SessionIdleTimeout: time.Duration(jsonCfg.Security.SessionIdleTimeout),
		},
		Remote: Remote{
			BaseURL:        jsonCfg.Remote.BaseURL,
			RequestTimeout: time.Duration(jsonCfg.Remote.RequestTimeout),
		},
		Device: Device{
			ID:   jsonCfg.Device.ID,
			Name: jsonCfg.Device.Name,
		},
	}

	return cfg, nil
}

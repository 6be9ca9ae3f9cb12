package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-d database DSN
//	-local-db client SQLite database path
//	-c/-config json file path with configs
//	-hash-key auth-hash HMAC key
//	-token-sign-key token signing key
//	-token-issuer token issuer name
//	-token-duration token duration (e.g. "1h", "30m")
//	-request-timeout inbound request timeout
//	-retention-window recycle-bin retention window
//	-cleanup-interval recycle-bin cleanup sweep interval
//	-poll-interval client sync-metadata poll interval
//	-remote-url sync service base URL
//	-device-id device identifier
//	-device-name device display name
func ParseFlags() *StructuredConfig {
	var serverAddress NetAddress
	var databaseDSN string
	var clientDBPath string
	var jsonConfigPath string
	var hashKey string
	var tokenSignKey string
	var tokenIssuer string
	var tokenDuration time.Duration
	var requestTimeout time.Duration
	var retentionWindow time.Duration
	var cleanupInterval time.Duration
	var pollInterval time.Duration
	var remoteURL string
	var deviceID string
	var deviceName string

	flag.Var(&serverAddress, "a", "Net address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&clientDBPath, "local-db", "", "Client SQLite database path")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&hashKey, "hash-key", "", "Auth-hash HMAC key")
	flag.StringVar(&tokenSignKey, "token-sign-key", "", "Token signing key")
	flag.StringVar(&tokenIssuer, "token-issuer", "", "Token issuer")
	flag.DurationVar(&tokenDuration, "token-duration", 0, "Token duration (e.g., 1h, 30m)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.DurationVar(&retentionWindow, "retention-window", 0, "Recycle-bin retention window")
	flag.DurationVar(&cleanupInterval, "cleanup-interval", 0, "Recycle-bin cleanup interval")
	flag.DurationVar(&pollInterval, "poll-interval", 0, "Client sync poll interval")
	flag.StringVar(&remoteURL, "remote-url", "", "Sync service base URL")
	flag.StringVar(&deviceID, "device-id", "", "Device identifier")
	flag.StringVar(&deviceName, "device-name", "", "Device display name")

	flag.Parse()

	return &StructuredConfig{
		Auth: Auth{
			HashKey:       hashKey,
			TokenSignKey:  tokenSignKey,
			TokenIssuer:   tokenIssuer,
			TokenDuration: tokenDuration,
		},
		Storage: Storage{
			DB:       DB{DSN: databaseDSN},
			ClientDB: ClientDB{DSN: clientDBPath},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Sync: Sync{
			RetentionWindow: retentionWindow,
			CleanupInterval: cleanupInterval,
			PollInterval:    pollInterval,
		},
		Remote: Remote{
			BaseURL: remoteURL,
		},
		Device: Device{
			ID:   deviceID,
			Name: deviceName,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is
// "localhost" or empty, and returns an error otherwise.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form host:port")
	}

	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return errors.New("port must be a number")
	}
	if port < 0 || port > 65535 {
		return errors.New("port must be in range 0-65535")
	}

	host := hostAndPort[0]
	if host != "" && host != "localhost" {
		if ip := net.ParseIP(host); ip == nil {
			return errors.New("invalid host")
		}
	}

	a.Host = host
	a.Port = port

	return nil
}

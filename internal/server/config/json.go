package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

// JsonConfig is the on-disk shape of the configuration file.
type JsonConfig struct {
	EndpointAddrGRPC      string `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP      string `json:"endpoint_addr_http"`
	StorageBackend        string `json:"storage_backend"`
	DatabaseDSN           string `json:"database_dsn"`
	RedisAddr             string `json:"redis_addr"`
	RedisPrefix           string `json:"redis_prefix"`
	SecretKey             string `json:"secret_key"`
	PasswordHashAlgorithm string `json:"password_hash_algorithm"`
	BcryptCost            int    `json:"bcrypt_cost"`
	LogLevel              string `json:"log_level"`
}

// parseJson loads the file named by -c / -config, if any, and copies every
// non-zero field into config. Unreadable files and invalid JSON panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPrefix, c.RedisPrefix)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.PasswordHashAlgorithm, c.PasswordHashAlgorithm)
	setString(&config.LogLevel, c.LogLevel)

	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

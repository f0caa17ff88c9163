// Package config loads runtime configuration for the gophauth CLI.
//
// Sources, in increasing precedence:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment: GOPHAUTH_SERVER_ADDR, GOPHAUTH_CLIENT_DB, GOPHAUTH_REQUEST_TIMEOUT.
//  4. Flags: -a address, -f database file, -t timeout in seconds.
//
// JSON example:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "db_path": "gophauth.db",
//	  "request_timeout": "5s"
//	}
package config

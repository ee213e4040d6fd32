// Package config loads runtime configuration for the CVGenius offline client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment variables (CVGENIUS_SERVER_URL, CVGENIUS_DB_PATH,
//     CVGENIUS_ONLINE_CHECK_INTERVAL, CVGENIUS_LOG_FORMAT, CVGENIUS_LOG_LEVEL).
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string     base URL of the CVGenius API
//	-db string    path of the local SQLite store
//	-i int        online status check interval (seconds)
//	-log-format   json | console
//
// # JSON schema
//
// Intervals accept duration strings or whole seconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "db_path": "cvs.db",
//	  "online_check_interval": "3s"
//	}
package config

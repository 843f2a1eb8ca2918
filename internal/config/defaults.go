package config

const (
	defaultDatabasePath         = "~/.local/share/bello/bello.db"
	defaultStorageDir           = "~/.local/share/bello/storage"
	defaultLogDir               = "~/.local/share/bello/logs"
	defaultLogLevel             = "info"
	defaultLogFormat            = "console"
	defaultConnectorBind        = "127.0.0.1:1842"
	defaultConnectorIdleTimeout = 30
	defaultConnectorMaxItems    = 1000
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		DatabasePath:         defaultDatabasePath,
		StorageDir:           defaultStorageDir,
		LogDir:               defaultLogDir,
		LogLevel:             defaultLogLevel,
		LogFormat:            defaultLogFormat,
		ConnectorBind:        defaultConnectorBind,
		ConnectorIdleTimeout: defaultConnectorIdleTimeout,
		ConnectorMaxItems:    defaultConnectorMaxItems,
	}
}

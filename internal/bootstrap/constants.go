package bootstrap

// Log messages for application startup and shutdown
const (
	LogMsgLoggingInitialized      = "Logging initialized"
	LogMsgStartingService         = "Starting GuildShop"
	LogMsgConfigurationLoaded     = "Configuration loaded"
	LogMsgShuttingDownServer      = "Shutting down server"
	LogMsgServerForcedShutdown    = "Server forced to shutdown"
	LogMsgOutboxDispatcherStopped = "Role outbox dispatcher stopped"
	LogMsgDiscordSessionClosed    = "Discord session closed"
	LogMsgServerStopped           = "Server stopped"
)

// Error message prefixes
const (
	ErrMsgFailedCreateLogDir   = "failed to create logs directory"
	ErrMsgFailedOpenLogFile    = "failed to open log file"
	ErrMsgFailedDiscordSession = "failed to create discord session"
)

// Log file retention: keep the 9 most recent session logs
const logFilesToKeep = 9

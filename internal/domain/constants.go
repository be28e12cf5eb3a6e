package domain

const (
	ServerName                        = "generated-mcp-server"
	DefaultPort                       = 3001
	DefaultSSEPath                    = "/sse"
	DefaultMessagesPath               = "/messages"
	SessionIDQueryParam               = "sessionId"
	DefaultLogLevel                   = "info"
	DefaultAdobeBaseURL               = "https://mc.adobe.io"
	DefaultAdobeActivityID            = "168816"
	DefaultAdobeRateLimit             = 0.0
	DefaultObservabilityListenAddress = ""
	DefaultShutdownTimeoutSeconds     = 5
	DefaultMaxMessageBytes            = 4 * 1024 * 1024
)

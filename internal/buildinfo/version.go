package buildinfo

// Version is overridden at build time via -ldflags "-X targetmcp/internal/buildinfo.Version=...".
var Version = "0.1.0"

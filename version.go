package main

// Build information, set via ldflags at build time:
//
//	go build -ldflags "-X main.Version=1.2.0 -X main.Commit=$(git rev-parse --short HEAD)"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

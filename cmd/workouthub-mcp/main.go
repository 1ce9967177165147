package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/ingest/builtin"
	"github.com/claude/workouthub/internal/mcp"
	"github.com/claude/workouthub/internal/roundtrip"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "workouthub server URL; empty converts in-process")
	apiKey := flag.String("api-key", os.Getenv("WORKOUTHUB_AUTH_API_KEY"), "API key for the remote server")
	policyPath := flag.String("policy", "", "tolerance policy file for in-process round trips")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("workouthub-mcp", Version)
		return
	}

	// stdout carries the protocol, so logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource
	if *serverURL != "" {
		ds = mcp.NewHTTPClient(strings.TrimRight(*serverURL, "/"), *apiKey)
		log.Info("remote mode", "server", *serverURL)
	} else {
		policy := roundtrip.DefaultPolicy()
		if *policyPath != "" {
			var err error
			policy, err = roundtrip.LoadPolicy(*policyPath)
			if err != nil {
				log.Error("failed to load tolerance policy", "error", err)
				os.Exit(1)
			}
		}
		ds = mcp.NewLocal(builtin.Registry(ingest.DefaultOptions(), log), policy, nil)
		log.Info("local mode")
	}

	if err := mcpserver.ServeStdio(mcp.New(ds, Version, log)); err != nil {
		log.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}

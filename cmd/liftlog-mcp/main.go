package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/liftlog/internal/client"
	"github.com/claude/liftlog/internal/mcp"
	"github.com/claude/liftlog/internal/storage/sqlite"
	"github.com/claude/liftlog/internal/workout"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "liftlog server URL (e.g. https://liftlog.tail1234.ts.net)")
	token := flag.String("token", os.Getenv("LIFTLOG_TOKEN"), "bearer token for jwt deployments")
	localPath := flag.String("local", "", "read a local SQLite database instead of a server")
	login := flag.String("login", "local", "user login for -local mode")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftlog-mcp", Version)
		return
	}

	// stdout carries the MCP protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource
	switch {
	case *localPath != "":
		store, err := sqlite.Open(*localPath)
		if err != nil {
			log.Error("failed to open database", "path", *localPath, "error", err)
			os.Exit(1)
		}
		defer store.Close()
		owner, err := store.GetOrCreateUser(context.Background(), *login, "")
		if err != nil {
			log.Error("failed to resolve user", "login", *login, "error", err)
			os.Exit(1)
		}
		ds = workout.NewService(store, nil, nil, workout.Options{}, log).For(owner)
		log.Info("serving local database", "path", *localPath, "login", *login)
	case *serverURL != "":
		ds = client.New(*serverURL, *token)
		log.Info("serving remote API", "server", *serverURL)
	default:
		fmt.Fprintf(os.Stderr, "Usage: liftlog-mcp -server <URL> [-token T] | -local <db path> [-login L]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := server.ServeStdio(mcp.New(ds, Version, log)); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}

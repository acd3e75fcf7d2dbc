// Copyright 2025 The QuickFind Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the quickfind search server and CLI [DBG] application.

QuickFind provides low-latency free-form search over items tagged with
arbitrary keyword sets. Every contiguous substring of every keyword is
indexed, so partially entered queries already surface the top hits. It can
operate as a MessagePack IPC server for integration with editors and app
backends, or as a CLI application for testing and debugging.

# Usage

Start the server with an empty index:

	quickfind

Preload a dataset and enable debug mode:

	quickfind -data items.tsv -d

Run in CLI mode for interactive testing:

	quickfind -c -limit 10

The data file holds one item per line: an item id, a tab, and the raw
keywords blob for that item. Keywords pass through the same extraction and
normalization pipeline as queries.

# Configuration

Runtime configuration is managed through a TOML file that supports server
parameters and engine policies:

	[server]
	max_limit = 64
	default_limit = 10
	min_query = 1
	max_query = 60

	[search]
	unmatched_policy = "backtracking"
	accumulation_policy = "union"
	parallel = false

The config file is automatically created with defaults if it doesn't exist.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. Search requests
are processed synchronously with microsecond timing information included
in responses.

Send a search request:

	{"id": "req1", "q": "mana acc", "l": 10}

Receive scored items:

	{"id": "req1", "h": [{"i": "Eve", "s": 2.5}], "c": 1, "t": 145}

Index management requests allow runtime dataset changes:

	{"id": "idx1", "action": "add", "item": "Hero", "keywords": "Walt Kowalski Jake Blues Shaun"}
	{"id": "idx2", "action": "stats"}

# Engine

The core functionality is provided by the search package, which wraps the
fragment graph with keyword extraction, normalization, scoring, policy
driven combination of multi-keyword queries and top-k selection.

	eng := search.New[string](cfg.EngineOptions()...)
	eng.AddItem("Hero", "Walt Kowalski Jake Blues Shaun")
	items := eng.FindItems("walk", 10)

# Command Line Flags

The following flags control application behavior:

	-data string
	    TSV file of items to preload (id<TAB>keywords per line)
	-config string
	    Custom config file path
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-limit int
	    Number of results to return in CLI mode
	-version
	    Show current version
*/
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bastiangx/quickfind/internal/cli"
	"github.com/bastiangx/quickfind/pkg/config"
	"github.com/bastiangx/quickfind/pkg/search"
	"github.com/bastiangx/quickfind/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0"
	AppName = "quickfind"
	gh      = "https://github.com/bastiangx/quickfind"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to initialize the server or CLI inputs.
// main() does not implement logic for them and only manages the flow.
func main() {
	sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	dataFile := flag.String("data", "", "TSV file of items to preload (id<TAB>keywords per line)")
	configFile := flag.String("config", "", "Custom config file path")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", 0, "Number of results to return in CLI mode (default from config)")

	flag.Parse()

	if *showVersion {
		logger := log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    false,
			ReportTimestamp: false,
			Prefix:          "",
		})

		styles := log.DefaultStyles()

		styles.Values["version"] = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
		styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})

		logger.SetStyles(styles)

		logger.Print("")
		logger.Print("[ QuickFind ] Really fast free-form item search!")
		logger.Print("", "version", Version)
		logger.Print("")
		logger.Print("use -h or --help to see available options")
		logger.Print("Github Repo", "gh", gh)

		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	appConfig, configPath, err := config.LoadConfigWithPriority(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
		os.Exit(1)
	}
	log.Debugf("Using config file: (%s)", configPath)

	engine := search.New[string](appConfig.EngineOptions()...)

	if *dataFile != "" {
		count, err := loadDataset(engine, *dataFile)
		if err != nil {
			log.Fatalf("Failed to load dataset: %v", err)
			os.Exit(1)
		}
		log.Debugf("Preloaded %d items from %s", count, *dataFile)
	}

	resultLimit := *limit
	if resultLimit < 1 {
		resultLimit = appConfig.Server.DefaultLimit
	}

	// CLI would be mainly used for testing and dbg purposes.
	// Any new features or changes should be tested in CLI mode first.
	if *cliMode {
		log.SetReportTimestamp(false)
		log.Debug("Input info:",
			"minQuery", appConfig.Server.MinQuery,
			"maxQuery", appConfig.Server.MaxQuery,
			"limit", resultLimit)

		inputHandler := cli.NewInputHandler(engine, appConfig.Server.MinQuery, appConfig.Server.MaxQuery, resultLimit)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
			os.Exit(1)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(engine, appConfig)

	showStartupInfo(engine)

	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
		os.Exit(1)
	}
}

// loadDataset feeds a TSV file of "id<TAB>keywords" lines into the engine.
// Blank lines and lines starting with '#' are skipped.
func loadDataset(engine *search.Engine[string], path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	count := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		item, keywords, found := strings.Cut(line, "\t")
		if !found {
			log.Warnf("Skipping malformed line (no tab): %s", line)
			continue
		}
		if engine.AddItem(strings.TrimSpace(item), keywords) {
			count++
		}
	}
	return count, scanner.Err()
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(engine *search.Engine[string]) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	stats := engine.Stats()

	println("===========")
	println(" QuickFind ")
	println("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Info("init: OK")
	log.Infof("indexed: %d items / %d keywords / %d fragments", stats.Items, stats.Keywords, stats.Fragments)
	log.Info("status: ready")
	println("===========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}

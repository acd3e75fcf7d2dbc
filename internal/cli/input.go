// Package cli handles cmd line input and queries for DBG and testing various features
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bastiangx/quickfind/internal/logger"
	"github.com/bastiangx/quickfind/pkg/search"
	"github.com/charmbracelet/log"
)

// InputHandler processes user input from stdin, running queries against
// the engine. Lines starting with '+' add items, '-' removes them, ':'
// runs commands, everything else is treated as a query.
type InputHandler struct {
	engine         *search.Engine[string]
	minQueryLength int
	maxQueryLength int
	resultLimit    int
	requestCount   int
	out            *log.Logger
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(engine *search.Engine[string], minLength, maxLength, limit int) *InputHandler {
	return &InputHandler{
		engine:         engine,
		minQueryLength: minLength,
		maxQueryLength: maxLength,
		resultLimit:    limit,
		out:            logger.New(""),
	}
}

// Start begins the interface loop.
// It continuously prompts for input, reads a line from stdin,
// and passes the trimmed input to handleInput() for processing.
// Loop terminates if an error occurs while reading from stdin
func (h *InputHandler) Start() error {
	h.out.Print("QuickFind CLI")
	reader := bufio.NewReader(os.Stdin)
	h.out.Print("type a query and press Enter, '+id: keywords' to add, '-id' to remove, ':stats' for counters (Ctrl+C to exit):")

	for {
		h.out.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		h.handleInput(line)
	}
}

// handleInput processes a single line of input.
func (h *InputHandler) handleInput(line string) {
	h.requestCount++

	switch {
	case strings.HasPrefix(line, "+"):
		h.handleAdd(strings.TrimPrefix(line, "+"))
	case strings.HasPrefix(line, "-"):
		item := strings.TrimSpace(strings.TrimPrefix(line, "-"))
		h.engine.RemoveItem(item)
		h.out.Printf("Removed '%s'", item)
	case line == ":stats":
		stats := h.engine.Stats()
		h.out.Printf("items: %d  keywords: %d  fragments: %d", stats.Items, stats.Keywords, stats.Fragments)
	case line == ":clear":
		h.engine.Clear()
		h.out.Print("Cleared")
	default:
		h.handleQuery(line)
	}
}

func (h *InputHandler) handleAdd(entry string) {
	item, keywords, found := strings.Cut(entry, ":")
	if !found {
		log.Errorf("Expected '+id: keywords', got: +%s", entry)
		return
	}
	item = strings.TrimSpace(item)
	if !h.engine.AddItem(item, keywords) {
		log.Warnf("No usable keywords for '%s', nothing added", item)
		return
	}
	h.out.Printf("Added '%s'", item)
}

// handleQuery runs a single query and prints the scored matches.
func (h *InputHandler) handleQuery(query string) {
	if len(query) < h.minQueryLength {
		log.Errorf("Query too short: %s", query)
		return
	}

	if len(query) > h.maxQueryLength {
		log.Errorf("Query too long: %s", query)
		return
	}

	start := time.Now()
	log.Debug("Processing request for", "query", query)

	result := h.engine.FindItemsWithDetail(query, h.resultLimit)

	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for query '%s'", elapsed, query)

	if len(result.Matches) == 0 {
		log.Warnf("No matches found for query: '%s'", query)
		return
	}

	h.out.Printf("Found %d matches for query '%s':", len(result.Matches), query)
	for i, m := range result.Matches {
		clItem := fmt.Sprintf("\033[38;5;75m%s\033[0m", m.Item)
		h.out.Printf("%2d. %-40s (score: %7.3f)  [%s]", i+1, clItem, m.Score, strings.Join(m.Keywords, " "))
	}
}

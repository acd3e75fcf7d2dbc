package server

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bastiangx/quickfind/pkg/config"
	"github.com/bastiangx/quickfind/pkg/search"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// request is the decode envelope: search and index requests share the
// stream, an "action" field marks the index ones.
type request struct {
	ID       string `msgpack:"id"`
	Query    string `msgpack:"q"`
	Limit    int    `msgpack:"l"`
	Detail   bool   `msgpack:"d"`
	Action   string `msgpack:"action"`
	Item     string `msgpack:"item"`
	Keywords string `msgpack:"keywords"`
}

// Server handles the IPC for item searches
type Server struct {
	engine  *search.Engine[string]
	cfg     *config.Config
	decoder *msgpack.Decoder
	encoder *msgpack.Encoder
}

// NewServer creates a new search server using stdin/stdout for IPC
func NewServer(engine *search.Engine[string], cfg *config.Config) *Server {
	return NewServerIO(engine, cfg, os.Stdin, os.Stdout)
}

// NewServerIO creates a server over explicit streams, mainly for tests
func NewServerIO(engine *search.Engine[string], cfg *config.Config, r io.Reader, w io.Writer) *Server {
	return &Server{
		engine:  engine,
		cfg:     cfg,
		decoder: msgpack.NewDecoder(r),
		encoder: msgpack.NewEncoder(w),
	}
}

// Start begins listening for IPC requests
func (s *Server) Start() error {
	log.Debug("Starting Server.")

	s.send(map[string]string{"status": "ready"})

	for {
		var req request
		if err := s.decoder.Decode(&req); err != nil {
			if err == io.EOF {
				return nil
			}
			log.Errorf("Decoding request: %v", err)
			return err
		}
		s.handleRequest(req)
	}
}

// handleRequest dispatches a decoded request
func (s *Server) handleRequest(req request) {
	if req.Action != "" {
		s.handleIndex(req)
		return
	}
	s.handleFind(req)
}

func (s *Server) handleFind(req request) {
	query := req.Query

	if query == "" {
		s.sendError(req.ID, "Missing 'q' parameter", 400)
		log.Debug("Query is empty in request")
		return
	}

	if len(query) > s.cfg.Server.MaxQuery {
		s.sendError(req.ID, fmt.Sprintf("Query exceeds maximum length of %d characters", s.cfg.Server.MaxQuery), 400)
		log.Debug("Query is too long in request")
		return
	}

	limit := req.Limit
	if limit < 1 {
		limit = s.cfg.Server.DefaultLimit
	}
	if limit > s.cfg.Server.MaxLimit {
		limit = s.cfg.Server.MaxLimit
	}

	start := time.Now()
	result := s.engine.FindItemsWithDetail(query, limit)
	elapsed := time.Since(start)

	hits := make([]FindHit, 0, len(result.Matches))
	for _, match := range result.Matches {
		hit := FindHit{Item: match.Item, Score: match.Score}
		if req.Detail {
			hit.Keywords = match.Keywords
		}
		hits = append(hits, hit)
	}

	s.send(FindResponse{
		ID:        req.ID,
		Hits:      hits,
		Count:     len(hits),
		TimeTaken: elapsed.Microseconds(),
	})
}

func (s *Server) handleIndex(req request) {
	switch req.Action {
	case "add":
		if req.Item == "" {
			s.sendError(req.ID, "Missing 'item' parameter", 400)
			return
		}
		if !s.engine.AddItem(req.Item, req.Keywords) {
			s.send(IndexResponse{ID: req.ID, Status: "ignored", Error: "no usable keywords"})
			return
		}
		s.send(IndexResponse{ID: req.ID, Status: "ok"})

	case "remove":
		if req.Item == "" {
			s.sendError(req.ID, "Missing 'item' parameter", 400)
			return
		}
		s.engine.RemoveItem(req.Item)
		s.send(IndexResponse{ID: req.ID, Status: "ok"})

	case "clear":
		s.engine.Clear()
		s.send(IndexResponse{ID: req.ID, Status: "ok"})

	case "stats":
		stats := s.engine.Stats()
		s.send(IndexResponse{
			ID:        req.ID,
			Status:    "ok",
			Items:     stats.Items,
			Keywords:  stats.Keywords,
			Fragments: stats.Fragments,
		})

	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown action: %s", req.Action), 400)
	}
}

// send encodes a response onto the stream
func (s *Server) send(response interface{}) {
	if err := s.encoder.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.send(RequestError{ID: id, Error: message, Code: code})
}

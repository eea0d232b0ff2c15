package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type mockConfig struct {
	PaidShape    string // "array", "data" or "page"
	Token        string
	EmitInterval time.Duration
}

type mockServer struct {
	cfg    mockConfig
	logger *slog.Logger

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	nextID  int64
}

var symbols = []string{"AAPL", "MSFT", "TSLA", "NVDA", "AMZN", "GOOG", "META", "NFLX"}

func newMockServer(cfg mockConfig, logger *slog.Logger) *mockServer {
	return &mockServer{
		cfg:    cfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
		nextID:  1000,
	}
}

func (s *mockServer) routes() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/free", s.getFree)
	r.GET("/paid", s.getPaid)
	r.GET("/stream", s.handleStream)

	return r
}

// getFree serves an always-paginated free-tier page.
func (s *mockServer) getFree(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	if size < 1 {
		size = 20
	}

	content := make([]map[string]any, 0, size)
	for i := 0; i < size; i++ {
		content = append(content, s.syntheticAlert())
	}

	c.JSON(http.StatusOK, gin.H{
		"content":       content,
		"number":        page,
		"size":          size,
		"last":          page >= 4,
		"totalElements": size * 5,
	})
}

// getPaid serves paid alerts in the configured wire shape, bearer-token
// authenticated.
func (s *mockServer) getPaid(c *gin.Context) {
	if c.GetHeader("Authorization") != "Bearer "+s.cfg.Token {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	if size < 1 {
		size = 20
	}

	content := make([]map[string]any, 0, size)
	for i := 0; i < size; i++ {
		content = append(content, s.syntheticAlert())
	}

	switch s.cfg.PaidShape {
	case "array":
		c.JSON(http.StatusOK, content)
	case "data":
		c.JSON(http.StatusOK, gin.H{"data": content})
	default:
		c.JSON(http.StatusOK, gin.H{
			"content":       content,
			"number":        page,
			"size":          size,
			"last":          false,
			"totalElements": size * 10,
		})
	}
}

// handleStream upgrades to WebSocket and registers the client for the
// synthetic emit loop. Inbound pings are answered with pongs.
func (s *mockServer) handleStream(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "error", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()
	s.logger.Info("stream client connected", "remote", conn.RemoteAddr())

	go s.readLoop(conn)
}

func (s *mockServer) readLoop(conn *websocket.Conn) {
	defer s.dropClient(conn)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var frame struct {
			Type      string `json:"type"`
			Timestamp int64  `json:"timestamp"`
		}
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}

		if frame.Type == "ping" {
			reply, _ := json.Marshal(map[string]any{
				"type":       "pong",
				"timestamp":  frame.Timestamp,
				"serverTime": time.Now().UnixMilli(),
			})
			s.send(conn, reply)
		}
	}
}

// emitLoop pushes synthetic alert and ticker frames to every client.
func (s *mockServer) emitLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.EmitInterval)
	defer ticker.Stop()

	n := 0
	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return
		case <-ticker.C:
			n++
			var frame []byte
			if n%5 == 0 {
				frame, _ = json.Marshal(map[string]any{
					"type": "ticker",
					"data": map[string]any{
						"title":         "NIFTY 50",
						"type":          "index",
						"lastPrice":     22000 + rand.Float64()*500,
						"changePercent": rand.Float64()*2 - 1,
					},
				})
			} else {
				frame, _ = json.Marshal(map[string]any{
					"type": "alert",
					"data": s.syntheticAlert(),
				})
			}
			s.broadcastFrame(frame)
		}
	}
}

func (s *mockServer) broadcastFrame(frame []byte) {
	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		s.send(c, frame)
	}
}

func (s *mockServer) send(conn *websocket.Conn, frame []byte) {
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		s.dropClient(conn)
	}
}

func (s *mockServer) dropClient(conn *websocket.Conn) {
	s.mu.Lock()
	_, ok := s.clients[conn]
	delete(s.clients, conn)
	s.mu.Unlock()

	if ok {
		conn.Close()
		s.logger.Info("stream client disconnected", "remote", conn.RemoteAddr())
	}
}

func (s *mockServer) closeAll() {
	s.mu.Lock()
	for c := range s.clients {
		c.Close()
		delete(s.clients, c)
	}
	s.mu.Unlock()
}

// syntheticAlert builds a payload mixing canonical and legacy key spellings
// so the client's fallback resolution stays exercised.
func (s *mockServer) syntheticAlert() map[string]any {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.mu.Unlock()

	symbol := symbols[rand.IntN(len(symbols))]
	price := 50 + rand.Float64()*450

	alert := map[string]any{
		"id":              id,
		"symbol":          symbol,
		"tradeType":       []string{"BUY", "SELL"}[rand.IntN(2)],
		"lastTradedPrice": price,
		"avgTradedPrice":  price * (0.99 + rand.Float64()*0.02),
		"open":            price * 0.98,
		"high":            price * 1.03,
		"low":             price * 0.97,
		"close":           price * 0.99,
		"volume":          rand.Int64N(5_000_000),
		"percentChange":   rand.Float64()*10 - 5,
		"alertTime":       time.Now().UnixMilli(),
	}

	// Legacy spellings show up on a fraction of records, as in production
	if rand.IntN(3) == 0 {
		delete(alert, "lastTradedPrice")
		alert["ltp"] = price
		delete(alert, "percentChange")
		alert["percent_change"] = rand.Float64()*10 - 5
	}
	if rand.IntN(4) == 0 {
		alert["week52High"] = price * 1.4
		alert["week52Low"] = price * 0.6
	}
	if rand.IntN(5) == 0 {
		alert["cacheKey"] = "alert:" + uuid.NewString()
		alert["cacheExpiresAt"] = time.Now().Add(10 * time.Minute).UnixMilli()
	}

	return alert
}

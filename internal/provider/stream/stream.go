package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"FinSight/internal/domain/models"
	applogger "FinSight/pkg/logger"
)

// Stream keeps the current session's intraday bars warm for the pattern
// detector by folding a trade websocket into one-minute bars per symbol.
// It is optional: the pipeline degrades to daily approximations without it.
type Stream struct {
	apiKey         string
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *applogger.Logger

	// connMu guards conn/connected and serializes writes; the websocket
	// allows at most one concurrent writer.
	connMu    sync.Mutex
	conn      *websocket.Conn
	connected bool

	mu         sync.RWMutex
	sessionDay time.Time
	sessions   map[string][]models.PriceBar
	building   map[string]*models.PriceBar
}

type Config struct {
	APIKey         string
	WebSocketURL   string
	Symbols        []string
	ReconnectDelay time.Duration
	PingInterval   time.Duration
}

func New(cfg Config, l *applogger.Logger) *Stream {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 20 * time.Second
	}
	return &Stream{
		apiKey:         cfg.APIKey,
		websocketURL:   cfg.WebSocketURL,
		symbols:        cfg.Symbols,
		reconnectDelay: cfg.ReconnectDelay,
		pingInterval:   cfg.PingInterval,
		log:            l,
		sessions:       make(map[string][]models.PriceBar),
		building:       make(map[string]*models.PriceBar),
	}
}

// Connect establishes the websocket connection.
func (s *Stream) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", s.websocketURL, s.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("stream connect: %w", err)
	}

	s.connMu.Lock()
	s.conn = conn
	s.connected = true
	s.connMu.Unlock()

	s.log.Info("intraday stream connected")
	return nil
}

// Subscribe subscribes to the configured symbols. Holds the write lock for
// the whole batch so subscribe frames never interleave with pings.
func (s *Stream) Subscribe(ctx context.Context) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn == nil || !s.connected {
		return fmt.Errorf("stream not connected")
	}
	for _, sym := range s.symbols {
		msg := map[string]string{"type": "subscribe", "symbol": sym}
		if err := s.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", sym, err)
		}
		s.log.Debug("stream subscribed", applogger.String("symbol", sym))
	}
	return nil
}

func (s *Stream) IsConnected() bool {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return s.connected
}

// Close shuts the connection down. Closing unblocks a pending ReadMessage
// in Run.
func (s *Stream) Close() error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	s.connected = false
	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

type wsTrade struct {
	Symbol string  `json:"s"`
	Price  float64 `json:"p"`
	Volume float64 `json:"v"`
	TimeMS int64   `json:"t"`
}

type wsMessage struct {
	Type string    `json:"type"`
	Data []wsTrade `json:"data"`
}

// Run pumps trades into session bars until the context ends, reconnecting on
// read failures.
func (s *Stream) Run(ctx context.Context) {
	go s.pingLoop(ctx)

	for {
		if ctx.Err() != nil {
			return
		}

		s.connMu.Lock()
		conn := s.conn
		s.connMu.Unlock()

		if conn == nil {
			if err := s.reconnect(ctx); err != nil {
				return
			}
			continue
		}
		_, b, err := conn.ReadMessage()
		if err != nil {
			s.log.Warn("stream read error", applogger.Error(err))
			s.dropConn(conn)
			continue
		}
		var m wsMessage
		if err := json.Unmarshal(b, &m); err != nil {
			continue // ignore non-trade frames
		}
		if m.Type != "trade" {
			continue
		}
		for _, t := range m.Data {
			s.fold(t)
		}
	}
}

// dropConn clears the connection state after a read failure, unless Close or
// a reconnect already replaced it.
func (s *Stream) dropConn(conn *websocket.Conn) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn == conn {
		s.connected = false
		s.conn = nil
	}
}

func (s *Stream) reconnect(ctx context.Context) error {
	select {
	case <-time.After(s.reconnectDelay):
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := s.Connect(ctx); err != nil {
		s.log.Warn("stream reconnect failed", applogger.Error(err))
		return nil
	}
	return s.Subscribe(ctx)
}

func (s *Stream) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.connMu.Lock()
			if s.conn != nil {
				_ = s.conn.WriteMessage(websocket.PingMessage, nil)
			}
			s.connMu.Unlock()
		}
	}
}

// fold accumulates a trade into the forming one-minute bar for its symbol.
// Bars from a previous trading day are discarded first, so SessionBars only
// ever spans the current session.
func (s *Stream) fold(t wsTrade) {
	if t.Price <= 0 {
		return
	}
	minute := time.UnixMilli(t.TimeMS).UTC().Truncate(time.Minute)
	day := minute.Truncate(24 * time.Hour)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !day.Equal(s.sessionDay) {
		s.resetLocked()
		s.sessionDay = day
	}

	cur := s.building[t.Symbol]
	if cur == nil || !cur.Timestamp.Equal(minute) {
		if cur != nil {
			s.sessions[t.Symbol] = append(s.sessions[t.Symbol], *cur)
		}
		s.building[t.Symbol] = &models.PriceBar{
			Timestamp: minute,
			Open:      t.Price,
			High:      t.Price,
			Low:       t.Price,
			Close:     t.Price,
			Volume:    t.Volume,
		}
		return
	}

	if t.Price > cur.High {
		cur.High = t.Price
	}
	if t.Price < cur.Low {
		cur.Low = t.Price
	}
	cur.Close = t.Price
	cur.Volume += t.Volume
}

// SessionBars returns a copy of the completed bars for a symbol, including
// the forming bar.
func (s *Stream) SessionBars(symbol string) []models.PriceBar {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bars := make([]models.PriceBar, 0, len(s.sessions[symbol])+1)
	bars = append(bars, s.sessions[symbol]...)
	if cur := s.building[symbol]; cur != nil {
		bars = append(bars, *cur)
	}
	return bars
}

// ResetSession clears accumulated bars, called at session rollover.
func (s *Stream) ResetSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Stream) resetLocked() {
	s.sessions = make(map[string][]models.PriceBar)
	s.building = make(map[string]*models.PriceBar)
}

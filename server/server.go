package server

import (
	"encoding/json"
	"net/http"
	stdrpc "net/rpc"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/revealduo/revealserver/broadcast"
	"github.com/revealduo/revealserver/config"
	"github.com/revealduo/revealserver/logger"
	"github.com/revealduo/revealserver/models"
	"github.com/revealduo/revealserver/monitor"
	"github.com/revealduo/revealserver/network"
	"github.com/revealduo/revealserver/persistence"
	"github.com/revealduo/revealserver/room"
	adminrpc "github.com/revealduo/revealserver/rpc"
	"github.com/revealduo/revealserver/services"
	"github.com/revealduo/revealserver/session"
	"github.com/revealduo/revealserver/timer"
)

type GameServer struct {
	cfg            *config.Config
	upgrader       websocket.Upgrader
	registry       *room.Registry
	sessionManager *session.Manager
	broadcaster    *broadcast.RoomBroadcaster
	stats          *services.StatsService
	timers         *timer.Manager
	monitor        *monitor.Monitor
	rpcServer      *adminrpc.Server
	httpServer     *http.Server
	shutdownChan   chan struct{}
}

func NewGameServer(cfg *config.Config, store persistence.Store) *GameServer {
	s := &GameServer{
		cfg:            cfg,
		sessionManager: session.NewManager(),
		stats:          services.NewStatsService(store),
		timers:         timer.NewManager(),
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // party codes are the access control here
			},
		},
	}

	s.monitor = monitor.NewMonitor("revealserver", func() (int, int) {
		return s.registry.Count(), s.sessionManager.Count()
	})
	s.broadcaster = broadcast.NewRoomBroadcaster(s.sessionManager, s.monitor)

	s.registry = room.NewRegistry(s.timers, room.Options{
		Countdown:    time.Duration(cfg.Game.CountdownSeconds) * time.Second,
		HistoryLimit: cfg.Game.HistoryLimit,
		OnReveal:     s.onReveal,
	})

	rpcServer, err := adminrpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer
	stdrpc.Register(adminrpc.NewAdminService(s))

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()
	s.monitor.StartServer(s.cfg.Server.MonitorAddress)

	s.timers.Every(s.cfg.Game.ReapInterval, s.reap)
	s.timers.Every(s.cfg.Game.StatsLogInterval, s.logServerStats)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.monitor.HealthHandler())
	if dir := s.cfg.Server.PublicDir; dir != "" {
		if _, err := os.Stat(dir); err == nil {
			mux.Handle("/", spaHandler(dir))
		}
	}

	s.httpServer = &http.Server{Addr: s.cfg.Server.HTTPAddress, Handler: mux}
	logger.Log.Infof("Reveal server listening on %s", s.cfg.Server.HTTPAddress)
	return s.httpServer.ListenAndServe()
}

// Shutdown notifies every client, then tears the listeners down.
func (s *GameServer) Shutdown() {
	payload, _ := json.Marshal(map[string]interface{}{
		"message":   "Server is restarting, please refresh the page in a moment.",
		"timestamp": time.Now().UnixMilli(),
	})
	s.broadcaster.BroadcastToAll(network.MsgTypeServerShutdown, payload)

	close(s.shutdownChan)
	s.timers.Stop()
	s.rpcServer.Stop()
	if s.httpServer != nil {
		s.httpServer.Close()
	}
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.monitor.IncConnectedClients()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	greeting, _ := json.Marshal(map[string]interface{}{
		"id":        sess.GetID(),
		"timestamp": time.Now().UnixMilli(),
	})
	sess.Send(network.MsgTypeConnected, greeting)

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.handleDisconnect(sess)
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecConnectedClients()
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

// handleDisconnect synthesizes a leave for every room the connection sat
// in. The surviving peer already got a fresh snapshot from the leave; the
// disconnect notice on top is informational only.
func (s *GameServer) handleDisconnect(sess *session.Session) {
	survivors := s.registry.LeaveAll(sess.GetID())
	for _, r := range survivors {
		payload, _ := json.Marshal(map[string]interface{}{
			"message":          "A player has disconnected",
			"remainingPlayers": r.MemberCount(),
		})
		s.broadcaster.Broadcast(r.Sessions(), network.MsgTypePlayerDisconnected, payload)
	}
	s.monitor.SetActiveRooms(s.registry.Count())
}

func (s *GameServer) onReveal(code string, memberIDs []string, entries []models.RevealEntry, gameCount int) {
	s.monitor.IncReveals()
	s.stats.RecordReveal(code, memberIDs, entries, gameCount)
}

func (s *GameServer) reap() {
	if n := s.registry.ReapIdle(s.cfg.Game.RoomTimeout); n > 0 {
		logger.Log.Infof("Reaper evicted %d idle room(s)", n)
	}
	s.monitor.SetActiveRooms(s.registry.Count())
}

func (s *GameServer) logServerStats() {
	logger.Log.Infow("Server stats",
		"rooms", s.registry.Count(),
		"connections", s.sessionManager.Count(),
		"uptime", s.monitor.Uptime().Round(time.Second).String(),
	)
}

// ServerStats implements adminrpc.StatsProvider.
func (s *GameServer) ServerStats() models.ServerStats {
	return models.ServerStats{
		TotalRooms:        s.registry.Count(),
		ActiveConnections: s.sessionManager.Count(),
		TotalPlayers:      s.stats.TotalPlayers(),
		UptimeSeconds:     s.monitor.Uptime().Seconds(),
		Rooms:             s.registry.Details(),
	}
}

// RoomStats implements adminrpc.StatsProvider.
func (s *GameServer) RoomStats(code string) (models.RoomStats, error) {
	r, ok := s.registry.Get(code)
	if !ok {
		return models.RoomStats{}, room.ErrRoomNotFound
	}
	return r.Stats(historyServeLimit), nil
}

// spaHandler serves static assets with an index.html catch-all so client
// routes survive a page reload.
func spaHandler(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.Clean(r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fs.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(dir, "index.html"))
	})
}

package rpc

import (
	"net"
	"net/rpc"

	"github.com/revealduo/revealserver/logger"
	"github.com/revealduo/revealserver/models"
)

// Server manages the RPC listener for the admin surface.
type Server struct {
	listener net.Listener
	address  string
}

func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// StatsProvider is the game server surface the admin service reads from.
type StatsProvider interface {
	ServerStats() models.ServerStats
	RoomStats(code string) (models.RoomStats, error)
}

// AdminService exposes operational stats over net/rpc, for debugging and
// dashboards that should not ride the game websocket.
type AdminService struct {
	provider StatsProvider
}

func NewAdminService(provider StatsProvider) *AdminService {
	return &AdminService{provider: provider}
}

type ServerStatsArgs struct{}

func (a *AdminService) ServerStats(args *ServerStatsArgs, reply *models.ServerStats) error {
	*reply = a.provider.ServerStats()
	return nil
}

type RoomStatsArgs struct {
	RoomCode string
}

func (a *AdminService) RoomStats(args *RoomStatsArgs, reply *models.RoomStats) error {
	stats, err := a.provider.RoomStats(args.RoomCode)
	if err != nil {
		return err
	}
	*reply = stats
	return nil
}

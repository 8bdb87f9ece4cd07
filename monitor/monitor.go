package monitor

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lonng/tickwheel/internal/env"
	"github.com/lonng/tickwheel/internal/log"
	"github.com/lonng/tickwheel/wheel"
	perrors "github.com/pingcap/errors"
)

// ErrServerClosed 服务已关闭
var ErrServerClosed = errors.New("tickwheel/monitor: server closed")

// Source 统计数据来源, *wheel.Wheel 实现了该接口
type Source interface {
	Stats() wheel.Stats
}

// Server 通过 HTTP 暴露时间轮的运行状态.
// GET /stats 返回一次快照, /stats/ws 升级为 websocket 后按固定间隔推送快照.
type Server struct {
	source   Source
	interval time.Duration
	upgrader *websocket.Upgrader

	mu     sync.Mutex
	server *http.Server
	conns  map[*websocket.Conn]struct{}
	closed bool
	chDie  chan struct{}
}

// NewServer 构造函数, interval 为 websocket 推送间隔
func NewServer(source Source, interval time.Duration) *Server {
	if interval <= 0 {
		interval = time.Second
	}
	return &Server{
		source:   source,
		interval: interval,
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(_ *http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
		chDie: make(chan struct{}),
	}
}

// Handler 返回路由, 宿主可以挂到自己的 http 服务上
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/stats", s.serveStats)
	mux.HandleFunc("/stats/ws", s.serveWS)
	return mux
}

// Start 启动监听, 返回实际监听的地址
func (s *Server) Start(addr string) (net.Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrServerClosed
	}
	if s.server != nil {
		return nil, perrors.Errorf("monitor already listening on %v", s.server.Addr)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, perrors.Annotatef(err, "monitor listen %v", addr)
	}
	s.server = &http.Server{Addr: ln.Addr().String(), Handler: s.Handler()}
	go func(server *http.Server) {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Tickwheel monitor serve error.", err)
		}
	}(s.server)

	log.Info("Tickwheel monitor started on %v.", ln.Addr())
	return ln.Addr(), nil
}

// Close 关闭监听和所有 websocket 连接
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.chDie)
	server := s.server
	conns := s.conns
	s.conns = nil
	s.mu.Unlock()

	for conn := range conns {
		//goland:noinspection GoUnhandledErrorResult
		conn.Close()
	}
	if server == nil {
		return nil
	}
	return server.Close()
}

//====

// serveStats 返回一次快照
func (s *Server) serveStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.source.Stats()); err != nil {
		log.Error("Tickwheel monitor write stats error.", err)
	}
}

// serveWS 升级为 websocket, 写协程推送快照, 读协程检测断开
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Info("Upgrade failure, URI=%s", r.RequestURI, err)
		return
	}
	if !s.track(conn, true) {
		//goland:noinspection GoUnhandledErrorResult
		conn.Close()
		return
	}
	defer s.track(conn, false)
	//goland:noinspection GoUnhandledErrorResult
	defer conn.Close()

	if env.Debug {
		log.Info("Tickwheel monitor client connected: %v", conn.RemoteAddr())
	}

	// 客户端不发送数据, 读到错误即认为断开
	chClosed := make(chan struct{})
	go func() {
		defer close(chClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		if err := conn.WriteJSON(s.source.Stats()); err != nil {
			if env.Debug {
				log.Info("Tickwheel monitor client gone: %v", conn.RemoteAddr(), err)
			}
			return
		}
		select {
		case <-ticker.C:
		case <-chClosed:
			return
		case <-s.chDie:
			return
		}
	}
}

// track 记录或移除连接, 服务关闭后拒绝新连接
func (s *Server) track(conn *websocket.Conn, add bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if add {
		if s.closed {
			return false
		}
		s.conns[conn] = struct{}{}
		return true
	}
	delete(s.conns, conn)
	return true
}

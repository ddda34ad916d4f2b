package chat

import (
	"net/http"
	"sync"
	"time"

	"live_chat_server/internal/config"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// gorilla/websocket 默认拒绝跨域握手，前后端分离部署时需要放开
var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WsConn 基于 gorilla/websocket 的连接
// 一个读协程处理入站帧，一个写协程消费出站缓冲
type WsConn struct {
	id     string
	userId string
	ws     *websocket.Conn
	cfg    config.WebSocketConfig

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// Upgrade 将 HTTP 请求升级为 WebSocket 连接
// 握手失败时 upgrader 已经写回了 HTTP 错误
func Upgrade(w http.ResponseWriter, r *http.Request, userId string, cfg config.WebSocketConfig) (*WsConn, error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = 60
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = 10
	}
	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = 256
	}
	if cfg.ReadLimit <= 0 {
		cfg.ReadLimit = 64 * 1024
	}
	return &WsConn{
		id:     uuid.NewString(),
		userId: userId,
		ws:     ws,
		cfg:    cfg,
		send:   make(chan []byte, cfg.SendBufferSize),
		done:   make(chan struct{}),
	}, nil
}

func (c *WsConn) ID() string     { return c.id }
func (c *WsConn) UserID() string { return c.userId }

// Send 出站缓冲满时丢弃该帧，不阻塞调用方
func (c *WsConn) Send(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		zap.L().Warn("ws send buffer full, frame dropped",
			zap.String("user_id", c.userId), zap.String("conn_id", c.id))
		return false
	}
}

// Close 通知写协程退出并关闭底层连接
func (c *WsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.ws.Close()
	})
	return err
}

// Run 启动写协程并在当前协程中执行读循环
// 读循环退出后调用 onClose，随后关闭连接
func (c *WsConn) Run(onFrame func(frame []byte), onClose func()) {
	go c.writeLoop()
	defer func() {
		onClose()
		_ = c.Close()
	}()
	c.readLoop(onFrame)
}

func (c *WsConn) readLoop(onFrame func(frame []byte)) {
	pongWait := time.Duration(c.cfg.PongWait) * time.Second
	c.ws.SetReadLimit(c.cfg.ReadLimit)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Warn("ws read failed", zap.String("user_id", c.userId), zap.Error(err))
			}
			return
		}
		onFrame(frame)
	}
}

func (c *WsConn) writeLoop() {
	writeWait := time.Duration(c.cfg.WriteWait) * time.Second
	// ping 间隔需小于 pongWait
	ticker := time.NewTicker(time.Duration(c.cfg.PongWait) * time.Second * 9 / 10)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				zap.L().Warn("ws write failed", zap.String("user_id", c.userId), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

var _ Conn = (*WsConn)(nil)

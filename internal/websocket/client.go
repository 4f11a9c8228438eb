package websocket

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// 错误定义
var (
	ErrClientNotFound = errors.New("客户端未找到")
	ErrClientClosed   = errors.New("客户端已关闭")
	ErrSendBufferFull = errors.New("发送缓冲区已满")
)

// WebSocket配置
const (
	// 写超时
	writeWait = 10 * time.Second

	// 读取pong超时
	pongWait = 60 * time.Second

	// ping发送周期（必须小于pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 最大消息大小
	maxMessageSize = 512 * 1024 // 512KB
)

// Client WebSocket客户端连接
type Client struct {
	// 客户端ID
	ID string

	// WebSocket连接
	Conn *websocket.Conn

	// 发送消息通道
	Send chan []byte

	// Hub引用
	Hub *Hub

	// 日志
	Logger *zap.Logger

	// 发送通道关闭保护：投递与关闭必须互斥，
	// 否则断开连接与提交后的推送竞争时会向已关闭通道发送
	sendMu     sync.Mutex
	sendClosed bool
}

// NewClient 创建客户端
func NewClient(hub *Hub, conn *websocket.Conn, logger *zap.Logger) *Client {
	return &Client{
		ID:     uuid.New().String(),
		Conn:   conn,
		Send:   make(chan []byte, 256),
		Hub:    hub,
		Logger: logger,
	}
}

// enqueue 向发送缓冲投递消息
func (c *Client) enqueue(data []byte) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.sendClosed {
		return ErrClientClosed
	}

	select {
	case c.Send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// closeSend 关闭发送缓冲，使WritePump退出
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if !c.sendClosed {
		c.sendClosed = true
		close(c.Send)
	}
}

// ReadPump 读取消息
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Logger.Error("WebSocket读取错误",
					zap.String("client_id", c.ID),
					zap.Error(err))
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump 发送消息
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道已关闭
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Logger.Error("WebSocket写入错误",
					zap.String("client_id", c.ID),
					zap.Error(err))
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage 处理收到的消息
func (c *Client) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.Logger.Warn("解析消息失败",
			zap.String("client_id", c.ID),
			zap.Error(err))
		c.sendError("INVALID_MESSAGE", "消息格式无效")
		return
	}

	switch msg.Type {
	case MessageTypeSubscribe:
		if msg.SessionID == "" {
			c.sendError("MISSING_SESSION_ID", "缺少会话ID")
			return
		}
		if err := c.Hub.Subscribe(c, msg.SessionID); err != nil {
			c.Logger.Warn("订阅会话失败",
				zap.String("client_id", c.ID),
				zap.String("session_id", msg.SessionID),
				zap.Error(err))
			c.sendError("SESSION_NOT_FOUND", "会话不存在: "+msg.SessionID)
		}

	case MessageTypeUnsubscribe:
		if msg.SessionID == "" {
			c.sendError("MISSING_SESSION_ID", "缺少会话ID")
			return
		}
		c.Hub.Unsubscribe(c, msg.SessionID)

	case MessageTypePong:
		// 心跳响应，无需处理

	case MessageTypePing:
		pong := &Message{
			Type:      MessageTypePong,
			Timestamp: time.Now().Unix(),
		}
		if data, err := json.Marshal(pong); err == nil {
			c.enqueue(data)
		}

	default:
		c.Logger.Warn("未知消息类型",
			zap.String("client_id", c.ID),
			zap.String("type", msg.Type))
		c.sendError("UNKNOWN_MESSAGE_TYPE", "未知消息类型: "+msg.Type)
	}
}

// sendError 发送错误消息
func (c *Client) sendError(code, message string) {
	data, err := json.Marshal(map[string]string{"code": code, "message": message})
	if err != nil {
		return
	}

	msg := &Message{
		Type:      MessageTypeError,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}

	if err := c.enqueue(payload); err != nil {
		c.Logger.Warn("错误消息发送失败",
			zap.String("client_id", c.ID),
			zap.Error(err))
	}
}

// upgrader WebSocket升级器
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 允许跨域（生产环境应配置白名单）
		return true
	},
}

// ServeWS 处理WebSocket升级请求
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request, logger *zap.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("WebSocket升级失败", zap.Error(err))
		return
	}

	client := NewClient(hub, conn, logger)
	hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

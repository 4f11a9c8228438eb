package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/wfunc/gem-game/internal/game"
	"github.com/wfunc/gem-game/internal/service"
	"go.uber.org/zap"
)

// SnapshotLoader 订阅时加载会话快照
type SnapshotLoader interface {
	GetSession(ctx context.Context, sessionID string) (*service.SessionSnapshot, error)
}

// Hub WebSocket连接管理中心。
// 客户端按会话订阅；命令提交成功后按会话推送事件与最新快照。
type Hub struct {
	// 客户端连接池
	clients   map[string]*Client
	clientsMu sync.RWMutex

	// 会话订阅：会话ID -> 客户端ID -> 客户端
	sessionSubs map[string]map[string]*Client
	subsMu      sync.RWMutex

	// 消息广播通道
	broadcast chan *Message

	// 注册/注销通道
	register   chan *Client
	unregister chan *Client

	// 快照加载器
	snapshots   SnapshotLoader
	snapshotsMu sync.RWMutex

	// 日志
	logger *zap.Logger
}

// Message WebSocket消息
type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// 消息类型
const (
	// 系统消息
	MessageTypeConnected = "connected"
	MessageTypePing      = "ping"
	MessageTypePong      = "pong"
	MessageTypeError     = "ERROR"

	// 会话协议
	MessageTypeSubscribe   = "SUBSCRIBE_SESSION"
	MessageTypeUnsubscribe = "UNSUBSCRIBE_SESSION"
	MessageTypeSnapshot    = "SESSION_SNAPSHOT"
	MessageTypeEvents      = "SESSION_EVENTS"
)

// sessionEventsData SESSION_EVENTS消息负载
type sessionEventsData struct {
	SessionID string       `json:"sessionId"`
	Events    []game.Event `json:"events"`
}

// NewHub 创建Hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:     make(map[string]*Client),
		sessionSubs: make(map[string]map[string]*Client),
		broadcast:   make(chan *Message, 256),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		logger:      logger,
	}
}

// SetSnapshotLoader 设置快照加载器。
// Hub先于服务层创建（命令服务需要Hub作为通知器），加载器在服务层就绪后注入。
func (h *Hub) SetSnapshotLoader(snapshots SnapshotLoader) {
	h.snapshotsMu.Lock()
	h.snapshots = snapshots
	h.snapshotsMu.Unlock()
}

// Run 运行Hub
func (h *Hub) Run() {
	// 启动心跳检测
	go h.runHeartbeat()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// registerClient 注册客户端
func (h *Hub) registerClient(client *Client) {
	h.clientsMu.Lock()
	h.clients[client.ID] = client
	h.clientsMu.Unlock()

	h.logger.Info("WebSocket客户端连接",
		zap.String("client_id", client.ID))

	msg := &Message{
		Type:      MessageTypeConnected,
		Timestamp: time.Now().Unix(),
		Data:      json.RawMessage(`{"message":"连接成功"}`),
	}
	h.SendToClient(client.ID, msg)
}

// unregisterClient 注销客户端并清理其全部订阅
func (h *Hub) unregisterClient(client *Client) {
	h.clientsMu.Lock()
	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		// closeSend与投递互斥，推送协程不会写入已关闭通道
		client.closeSend()
	}
	h.clientsMu.Unlock()

	h.subsMu.Lock()
	for sessionID, subs := range h.sessionSubs {
		if _, ok := subs[client.ID]; ok {
			delete(subs, client.ID)
			if len(subs) == 0 {
				delete(h.sessionSubs, sessionID)
			}
		}
	}
	h.subsMu.Unlock()

	h.logger.Info("WebSocket客户端断开",
		zap.String("client_id", client.ID))
}

// Subscribe 订阅会话，成功后立即推送当前快照
func (h *Hub) Subscribe(client *Client, sessionID string) error {
	h.snapshotsMu.RLock()
	snapshots := h.snapshots
	h.snapshotsMu.RUnlock()
	if snapshots == nil {
		return errors.New("快照加载器未就绪")
	}

	snapshot, err := snapshots.GetSession(context.Background(), sessionID)
	if err != nil {
		return err
	}

	h.subsMu.Lock()
	subs, ok := h.sessionSubs[sessionID]
	if !ok {
		subs = make(map[string]*Client)
		h.sessionSubs[sessionID] = subs
	}
	subs[client.ID] = client
	h.subsMu.Unlock()

	h.logger.Info("客户端订阅会话",
		zap.String("client_id", client.ID),
		zap.String("session_id", sessionID))

	return h.sendSnapshot(client.ID, snapshot)
}

// Unsubscribe 取消会话订阅
func (h *Hub) Unsubscribe(client *Client, sessionID string) {
	h.subsMu.Lock()
	if subs, ok := h.sessionSubs[sessionID]; ok {
		delete(subs, client.ID)
		if len(subs) == 0 {
			delete(h.sessionSubs, sessionID)
		}
	}
	h.subsMu.Unlock()
}

// NotifySessionChanged 命令提交成功后的会话变更通知。
// 先推送事件再推送快照，订阅者可依事件流或快照任一方式同步。
func (h *Hub) NotifySessionChanged(sessionID string, events []game.Event, state *game.State) {
	eventsData, err := json.Marshal(sessionEventsData{
		SessionID: sessionID,
		Events:    events,
	})
	if err != nil {
		h.logger.Error("序列化事件负载失败", zap.String("session_id", sessionID), zap.Error(err))
		return
	}

	stateData, err := json.Marshal(state)
	if err != nil {
		h.logger.Error("序列化会话状态失败", zap.String("session_id", sessionID), zap.Error(err))
		return
	}

	now := time.Now().Unix()
	h.sendToSession(sessionID, &Message{
		Type:      MessageTypeEvents,
		SessionID: sessionID,
		Data:      eventsData,
		Timestamp: now,
	})
	h.sendToSession(sessionID, &Message{
		Type:      MessageTypeSnapshot,
		SessionID: sessionID,
		Data:      stateData,
		Timestamp: now,
	})
}

// sendSnapshot 推送会话快照给单个客户端
func (h *Hub) sendSnapshot(clientID string, snapshot *service.SessionSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	return h.SendToClient(clientID, &Message{
		Type:      MessageTypeSnapshot,
		SessionID: snapshot.SessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}

// sendToSession 推送消息给会话的全部订阅者
func (h *Hub) sendToSession(sessionID string, message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("序列化消息失败", zap.Error(err))
		return
	}

	h.subsMu.RLock()
	defer h.subsMu.RUnlock()

	for _, client := range h.sessionSubs[sessionID] {
		if err := client.enqueue(data); err != nil {
			h.logger.Warn("会话订阅者消息投递失败",
				zap.String("client_id", client.ID),
				zap.String("session_id", sessionID),
				zap.Error(err))
		}
	}
}

// broadcastMessage 广播消息
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("序列化消息失败", zap.Error(err))
		return
	}

	h.clientsMu.RLock()
	for _, client := range h.clients {
		if err := client.enqueue(data); err != nil {
			h.logger.Warn("客户端消息投递失败",
				zap.String("client_id", client.ID),
				zap.Error(err))
		}
	}
	h.clientsMu.RUnlock()
}

// SendToClient 发送消息给指定客户端
func (h *Hub) SendToClient(clientID string, message *Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.clientsMu.RLock()
	client, ok := h.clients[clientID]
	h.clientsMu.RUnlock()

	if !ok {
		return ErrClientNotFound
	}

	return client.enqueue(data)
}

// SubscriberCount 会话当前订阅者数量
func (h *Hub) SubscriberCount(sessionID string) int {
	h.subsMu.RLock()
	defer h.subsMu.RUnlock()
	return len(h.sessionSubs[sessionID])
}

// GetOnlineCount 获取在线连接数
func (h *Hub) GetOnlineCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// runHeartbeat 运行心跳检测
func (h *Hub) runHeartbeat() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		<-ticker.C
		ping := &Message{
			Type:      MessageTypePing,
			Timestamp: time.Now().Unix(),
		}
		h.broadcast <- ping
	}
}

// Register 注册客户端（公开方法）
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister 注销客户端（公开方法）
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

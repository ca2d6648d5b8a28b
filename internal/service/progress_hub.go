package service

import (
	"context"
	"edureach_backend/pkg/logger"
	"edureach_backend/pkg/monitoring"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	shardCount     = 16

	// 多实例之间转发离线进度事件的 redis 频道
	OfflineEventsChannel = "edureach:offline_events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type Client struct {
	Hub     *ProgressHub
	Conn    *websocket.Conn
	Send    chan []byte
	UserID  uint
	Limiter *rate.Limiter
}

// readPump 只处理心跳与 PING，进度数据全部由服务端下发
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.ctx.Done():
		}
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Warn("progress websocket unexpected close", zap.Error(err), zap.Uint("userId", c.UserID))
			}
			break
		}

		if !c.Limiter.Allow() {
			continue
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		monitoring.ProgressMessages.WithLabelValues(msg.Type, "in").Inc()

		if msg.Type == "PING" {
			pong, _ := json.Marshal(WSMessage{Type: "PONG"})
			select {
			case c.Send <- pong:
			default:
			}
		}
	}
}

func (c *Client) writePump() {
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
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// 每条消息单独一帧，前端按帧解析 JSON
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

type shard struct {
	clients map[uint]map[*Client]struct{}
	mu      sync.RWMutex
}

// ProgressHub 按用户推送离线下载进度。配置了 Redis 时经 pub/sub 转发，
// 每个实例只投递给自己持有的连接；未配置时直接本地投递。
type ProgressHub struct {
	shards     [shardCount]*shard
	register   chan *Client
	unregister chan *Client
	Redis      *redis.Client
	ctx        context.Context
	cancel     context.CancelFunc
	stopOnce   sync.Once
}

type PubSubMessage struct {
	UserID  uint            `json:"userId"`
	Payload json.RawMessage `json:"payload"`
}

func NewProgressHub(rdb *redis.Client) *ProgressHub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &ProgressHub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		Redis:      rdb,
		ctx:        ctx,
		cancel:     cancel,
	}
	for i := 0; i < shardCount; i++ {
		h.shards[i] = &shard{clients: make(map[uint]map[*Client]struct{})}
	}
	return h
}

func (h *ProgressHub) getShard(userID uint) *shard {
	return h.shards[userID%shardCount]
}

func (h *ProgressHub) Run() {
	if h.Redis != nil {
		pubsub := h.Redis.Subscribe(h.ctx, OfflineEventsChannel)
		defer pubsub.Close()
		go func() {
			for msg := range pubsub.Channel() {
				var psMsg PubSubMessage
				if err := json.Unmarshal([]byte(msg.Payload), &psMsg); err != nil {
					logger.Log.Error("PubSub unmarshal error", zap.Error(err))
					continue
				}
				h.pushLocal(psMsg.UserID, psMsg.Payload)
			}
		}()
	}

	for {
		select {
		case <-h.ctx.Done():
			return
		case client := <-h.register:
			s := h.getShard(client.UserID)
			s.mu.Lock()
			if s.clients[client.UserID] == nil {
				s.clients[client.UserID] = make(map[*Client]struct{})
			}
			s.clients[client.UserID][client] = struct{}{}
			s.mu.Unlock()
			monitoring.ProgressClients.Inc()

		case client := <-h.unregister:
			s := h.getShard(client.UserID)
			s.mu.Lock()
			if conns, ok := s.clients[client.UserID]; ok {
				if _, ok := conns[client]; ok {
					delete(conns, client)
					close(client.Send)
					monitoring.ProgressClients.Dec()
				}
				if len(conns) == 0 {
					delete(s.clients, client.UserID)
				}
			}
			s.mu.Unlock()
		}
	}
}

// PushToUser 投递给该用户在所有实例上的连接
func (h *ProgressHub) PushToUser(userID uint, msg WSMessage) {
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		logger.Log.Error("failed to encode progress message", zap.Error(err))
		return
	}
	monitoring.ProgressMessages.WithLabelValues(msg.Type, "out").Inc()

	if h.Redis == nil {
		h.pushLocal(userID, msgBytes)
		return
	}

	payload, _ := json.Marshal(PubSubMessage{UserID: userID, Payload: msgBytes})
	if err := h.Redis.Publish(h.ctx, OfflineEventsChannel, payload).Err(); err != nil {
		logger.Log.Warn("redis publish failed, delivering locally", zap.Error(err))
		h.pushLocal(userID, msgBytes)
	}
}

func (h *ProgressHub) pushLocal(userID uint, payload []byte) {
	s := h.getShard(userID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for client := range s.clients[userID] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

// Connections 当前实例上该用户的连接数
func (h *ProgressHub) Connections(userID uint) int {
	s := h.getShard(userID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients[userID])
}

// Stop 关闭所有连接，之后的 Run 循环退出
func (h *ProgressHub) Stop() {
	h.stopOnce.Do(func() {
		h.cancel()

		closed := 0
		for i := 0; i < shardCount; i++ {
			s := h.shards[i]
			s.mu.Lock()
			for userID, conns := range s.clients {
				for client := range conns {
					close(client.Send)
					closed++
				}
				delete(s.clients, userID)
			}
			s.mu.Unlock()
		}

		monitoring.ProgressClients.Set(0)
		logger.Log.Info("ProgressHub stopped", zap.Int("closedConnections", closed))
	})
}

func ServeWs(hub *ProgressHub, w http.ResponseWriter, r *http.Request, userID uint) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("WebSocket upgrade failed", zap.Error(err), zap.Uint("userId", userID))
		return
	}
	client := &Client{
		Hub:     hub,
		Conn:    conn,
		Send:    make(chan []byte, 256),
		UserID:  userID,
		Limiter: rate.NewLimiter(rate.Limit(5), 10),
	}

	select {
	case hub.register <- client:
	case <-hub.ctx.Done():
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

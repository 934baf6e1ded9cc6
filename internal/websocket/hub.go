package websocket

import (
	"sync"

	"DegensAgainstDecency/internal/utils"

	"github.com/charmbracelet/log"
)

type HubInterface interface {
	BroadcastToPlayers(ids []string, msg OutgoingMessage)
	ClientByAddress(id string) (*Client, bool)
	SendToPlayer(id string, msg OutgoingMessage)
	Close()
}

type Hub struct {
	clients    map[string]*Client // player id -> client
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastReq
	sendOne    chan sendReq
	incoming   chan IncomingMessage
	OnIncoming func(IncomingMessage)
	quit       chan struct{}
	closeOnce  sync.Once
	mu         sync.RWMutex
	log        *log.Logger
}

type broadcastReq struct {
	Addresses []string
	Message   OutgoingMessage
}

type sendReq struct {
	Address string
	Message OutgoingMessage
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastReq, 64),
		sendOne:    make(chan sendReq, 64),
		incoming:   make(chan IncomingMessage, 64),
		quit:       make(chan struct{}),
		log:        utils.Component("hub"),
	}
}

func (h *Hub) Run() {
	h.log.Info("hub started")

	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[c.PlayerID]; ok && old != c {
				// 同一玩家重复连接，踢掉旧连接
				close(old.Send)
			}
			h.clients[c.PlayerID] = c
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("register", "player", c.PlayerID, "online", n)

		case c := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[c.PlayerID]; ok && cur == c {
				delete(h.clients, c.PlayerID)
				close(c.Send)
				h.log.Debug("unregister", "player", c.PlayerID, "online", len(h.clients))
			}
			h.mu.Unlock()

		case req := <-h.broadcast:
			for _, addr := range req.Addresses {
				h.deliver(addr, req.Message)
			}

		case req := <-h.sendOne:
			h.deliver(req.Address, req.Message)

		case req := <-h.incoming:
			// 玩家消息统一转发给游戏层
			if h.OnIncoming != nil {
				h.OnIncoming(req)
			}

		case <-h.quit:
			h.mu.Lock()
			for addr, c := range h.clients {
				close(c.Send)
				delete(h.clients, addr)
			}
			h.mu.Unlock()
			h.log.Info("hub stopped")
			return
		}
	}
}

// deliver never blocks the hub; a client with a full buffer loses the message.
func (h *Hub) deliver(addr string, msg OutgoingMessage) {
	h.mu.RLock()
	client, ok := h.clients[addr]
	h.mu.RUnlock()
	if !ok {
		return
	}
	select {
	case client.Send <- msg:
	default:
		h.log.Warn("dropping message for slow client", "player", addr, "event", msg.Event)
	}
}

// BroadcastToPlayers sends msg to every listed player that is online.
func (h *Hub) BroadcastToPlayers(addrs []string, msg OutgoingMessage) {
	select {
	case h.broadcast <- broadcastReq{Addresses: addrs, Message: msg}:
	case <-h.quit:
	}
}

// SendToPlayer is safe for concurrent use.
func (h *Hub) SendToPlayer(addr string, msg OutgoingMessage) {
	select {
	case h.sendOne <- sendReq{Address: addr, Message: msg}:
	case <-h.quit:
	}
}

func (h *Hub) ClientByAddress(addr string) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[addr]
	return c, ok
}

// Online returns the number of connected clients.
func (h *Hub) Online() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.quit) })
}

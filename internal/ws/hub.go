package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Hub раздаёт события модерации по WebSocket: администраторы получают общий
// поток (новые загрузки, новые отзывы), разработчики — только события своих
// приложений. REST остаётся источником истины, рассылка best effort.
type Hub struct {
	mu         sync.RWMutex
	admins     map[*Client]struct{}
	developers map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	events     chan event
	ctx        context.Context
}

type event struct {
	developerID uuid.UUID // uuid.Nil — рассылка администраторам
	payload     []byte
}

// NewHub создаёт новый хаб.
func NewHub(ctx context.Context) *Hub {
	return &Hub{
		admins:     make(map[*Client]struct{}),
		developers: make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan event, 32),
		ctx:        ctx,
	}
}

// Run запускает главный цикл хаба.
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case ev := <-h.events:
			h.dispatch(ev)
		}
	}
}

// Register добавляет клиента.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// NotifyAdmins отправляет событие всем подключённым администраторам.
func (h *Hub) NotifyAdmins(eventType string, data any) error {
	return h.enqueue(uuid.Nil, eventType, data)
}

// NotifyDeveloper отправляет событие панели конкретного разработчика.
func (h *Hub) NotifyDeveloper(developerID uuid.UUID, eventType string, data any) error {
	return h.enqueue(developerID, eventType, data)
}

func (h *Hub) enqueue(developerID uuid.UUID, eventType string, data any) error {
	// Контракт сообщения: "type" — имя события, "data" — полезная нагрузка.
	payload, err := json.Marshal(map[string]any{
		"type": eventType,
		"data": data,
	})
	if err != nil {
		return fmt.Errorf("ws: не удалось сериализовать сообщение: %w", err)
	}

	select {
	case h.events <- event{developerID: developerID, payload: payload}:
	default:
		// Переполненная очередь не должна тормозить основной запрос.
	}
	return nil
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client.developerID == uuid.Nil {
		h.admins[client] = struct{}{}
		return
	}

	set, ok := h.developers[client.developerID]
	if !ok {
		set = make(map[*Client]struct{})
		h.developers[client.developerID] = set
	}
	set[client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client.developerID == uuid.Nil {
		if _, ok := h.admins[client]; ok {
			delete(h.admins, client)
			close(client.send)
		}
		return
	}

	set, ok := h.developers[client.developerID]
	if !ok {
		return
	}
	if _, ok := set[client]; ok {
		delete(set, client)
		close(client.send)
	}
	if len(set) == 0 {
		delete(h.developers, client.developerID)
	}
}

func (h *Hub) dispatch(ev event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	targets := h.admins
	if ev.developerID != uuid.Nil {
		targets = h.developers[ev.developerID]
	}

	for client := range targets {
		select {
		case client.send <- ev.payload:
		default:
			// Медленный клиент пропускает событие, а не блокирует рассылку.
		}
	}
}

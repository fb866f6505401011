package network

import (
	"sync"

	"frontier-server/pkg/api"
	"frontier-server/pkg/logger"
)

// Broadcaster занимается только рассылкой сообщений подписчикам.
// Подписчик - websocket-клиент; ключ - его clientID.
type Broadcaster struct {
	mu sync.RWMutex
	// Мапа: clientID -> Личный канал
	subscribers map[string]chan api.ServerMessage
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]chan api.ServerMessage),
	}
}

// Register создает личный канал для клиента.
func (b *Broadcaster) Register(clientID string) chan api.ServerMessage {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Если канал был, закрываем
	if old, ok := b.subscribers[clientID]; ok {
		close(old)
	}

	ch := make(chan api.ServerMessage, 100)
	b.subscribers[clientID] = ch
	return ch
}

// Unregister удаляет подписчика.
func (b *Broadcaster) Unregister(clientID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[clientID]; ok {
		close(ch)
		delete(b.subscribers, clientID)
	}
}

// SendTo отправляет сообщение конкретному клиенту (Unicast).
// Переполненный канал означает мертвого или безнадежно отставшего
// клиента - сообщение дропается, цикл симуляции никогда не блокируется.
func (b *Broadcaster) SendTo(clientID string, msg api.ServerMessage) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if ch, ok := b.subscribers[clientID]; ok {
		select {
		case ch <- msg:
		default:
			logger.Log.WithField("client_id", clientID).Warn("Subscriber channel full, dropping message")
		}
	}
}

// Broadcast отправляет всем подключенным клиентам.
func (b *Broadcaster) Broadcast(msg api.ServerMessage) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
			logger.Log.WithField("client_id", id).Warn("Subscriber channel full, dropping broadcast")
		}
	}
}

// SubscriberCount возвращает количество активных подписчиков.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

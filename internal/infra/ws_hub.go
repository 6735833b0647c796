package infra

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// EventoCarro is pushed to clients after every cart mutation. Clients
// re-request the consolidated views; the payload carries no totals.
type EventoCarro struct {
	CarroID uint      `json:"carro_id"`
	Evento  string    `json:"evento"`
	Fecha   time.Time `json:"fecha"`
}

type cliente struct {
	conn    *websocket.Conn
	carroID uint // 0 = every cart
	enviar  chan []byte
}

// Hub fans EventoCarro out to connected websocket clients.
type Hub struct {
	mu        sync.RWMutex
	clientes  map[*cliente]struct{}
	broadcast chan EventoCarro
	upgrader  websocket.Upgrader
}

func NewHub(origenes []string) *Hub {
	permitidos := make(map[string]bool, len(origenes))
	for _, o := range origenes {
		permitidos[o] = true
	}
	return &Hub{
		clientes:  make(map[*cliente]struct{}),
		broadcast: make(chan EventoCarro, 256),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				o := r.Header.Get("Origin")
				return o == "" || len(permitidos) == 0 || permitidos[o]
			},
		},
	}
}

// CarroActualizado queues an event without blocking; a full buffer drops it.
func (h *Hub) CarroActualizado(carroID uint, evento string) {
	select {
	case h.broadcast <- EventoCarro{CarroID: carroID, Evento: evento, Fecha: time.Now()}:
	default:
		log.Warn().Uint("carro_id", carroID).Str("evento", evento).Msg("ws: buffer lleno, evento descartado")
	}
}

// Run delivers queued events until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.cerrarTodos()
			return
		case ev := <-h.broadcast:
			h.difundir(ev)
		}
	}
}

func (h *Hub) difundir(ev EventoCarro) {
	msg, err := json.Marshal(ev)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clientes {
		if c.carroID != 0 && c.carroID != ev.CarroID {
			continue
		}
		select {
		case c.enviar <- msg:
		default:
			// slow client, skip this event
		}
	}
}

// Clientes returns the number of connected clients.
func (h *Hub) Clientes() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clientes)
}

// ServeHTTP upgrades the request. ?carro_id= restricts the stream to one cart.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var carroID uint
	if v := r.URL.Query().Get("carro_id"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			http.Error(w, "carro_id invalido", http.StatusBadRequest)
			return
		}
		carroID = uint(n)
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws: upgrade fallido")
		return
	}
	c := &cliente{conn: conn, carroID: carroID, enviar: make(chan []byte, 16)}
	h.agregar(c)
	go h.escribir(c)
	h.leer(c)
}

func (h *Hub) agregar(c *cliente) {
	h.mu.Lock()
	h.clientes[c] = struct{}{}
	h.mu.Unlock()
	log.Debug().Uint("carro_id", c.carroID).Int("clientes", h.Clientes()).Msg("ws: cliente conectado")
}

func (h *Hub) quitar(c *cliente) {
	h.mu.Lock()
	if _, ok := h.clientes[c]; ok {
		delete(h.clientes, c)
		close(c.enviar)
	}
	h.mu.Unlock()
}

// leer drains client frames so pings and close frames are processed.
func (h *Hub) leer(c *cliente) {
	defer func() {
		h.quitar(c)
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("ws: cierre inesperado")
			}
			return
		}
	}
}

func (h *Hub) escribir(c *cliente) {
	for msg := range c.enviar {
		_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.conn.Close()
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) cerrarTodos() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clientes {
		delete(h.clientes, c)
		close(c.enviar)
	}
}

package socket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"manjaword/pkg/dialog"
	"manjaword/pkg/logger"
)

const (
	PickOpenType   = "PICK_OPEN"   // Backend asks the UI for a file to open
	PickSaveType   = "PICK_SAVE"   // Backend asks the UI for a destination
	PickResultType = "PICK_RESULT" // UI answers a pick request
	PickCancelType = "PICK_CANCEL" // Backend no longer waits for an answer
)

type WSMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// PickResult is the payload of PICK_RESULT. A null path means the dialog
// was dismissed.
type PickResult struct {
	Path *string `json:"path"`
}

type selection struct {
	path string
	ok   bool
}

// Hub tracks the connected editor windows and the file dialogs they have
// been asked to show. It implements dialog.Picker.
type Hub struct {
	clients    map[*Client]bool
	Broadcast  chan WSMessage
	Register   chan *Client
	Unregister chan *Client
	quit       chan struct{}
	// One-shot answer channels keyed by request id.
	pending map[string]chan selection
	mu      sync.Mutex
}

var _ dialog.Picker = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Broadcast:  make(chan WSMessage),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		quit:       make(chan struct{}),
		pending:    make(map[string]chan selection),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			return

		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logger.Sugar.Infof("Editor window connected (%d open)", h.ClientCount())

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			remaining := len(h.clients)
			h.mu.Unlock()

			// Nobody is left to answer open dialogs.
			if remaining == 0 {
				h.abandonAll()
			}

		case msg := <-h.Broadcast:
			payload, err := json.Marshal(msg)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling broadcast message: %v", err)
				continue
			}

			h.mu.Lock()
			clientsToSend := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clientsToSend = append(clientsToSend, client)
			}
			h.mu.Unlock()

			for _, client := range clientsToSend {
				select {
				case client.Send <- payload:
				default:
					logger.Sugar.Warnf("Editor window send buffer is full, dropping %s", msg.Type)
				}
			}
		}
	}
}

// Stop ends Run.
func (h *Hub) Stop() {
	close(h.quit)
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) PickOpen(ctx context.Context, opts dialog.Options) (string, bool, error) {
	return h.pick(ctx, PickOpenType, opts)
}

func (h *Hub) PickSave(ctx context.Context, opts dialog.Options) (string, bool, error) {
	return h.pick(ctx, PickSaveType, opts)
}

// pick broadcasts a dialog request and waits for the first answer. No
// window, a dismissed dialog, a disconnect and a cancelled ctx all resolve
// as "nothing selected".
func (h *Hub) pick(ctx context.Context, kind string, opts dialog.Options) (string, bool, error) {
	payload, err := json.Marshal(opts)
	if err != nil {
		return "", false, err
	}

	id := uuid.NewString()
	answer := make(chan selection, 1)

	h.mu.Lock()
	if len(h.clients) == 0 {
		h.mu.Unlock()
		logger.Sugar.Warnf("No editor window connected to show %s", kind)
		return "", false, nil
	}
	h.pending[id] = answer
	h.mu.Unlock()
	defer h.forget(id)

	select {
	case h.Broadcast <- WSMessage{Type: kind, ID: id, Payload: payload}:
	case <-ctx.Done():
		return "", false, nil
	}

	select {
	case sel := <-answer:
		return sel.path, sel.ok, nil
	case <-ctx.Done():
		h.cancel(id)
		return "", false, nil
	}
}

// Resolve delivers the answer for id. Unknown or already answered ids are
// ignored.
func (h *Hub) Resolve(id string, path *string) {
	h.mu.Lock()
	answer, ok := h.pending[id]
	delete(h.pending, id)
	h.mu.Unlock()
	if !ok {
		logger.Sugar.Debugf("Ignoring answer for unknown pick request %s", id)
		return
	}

	sel := selection{}
	if path != nil && *path != "" {
		sel = selection{path: *path, ok: true}
	}
	answer <- sel
}

func (h *Hub) forget(id string) {
	h.mu.Lock()
	delete(h.pending, id)
	h.mu.Unlock()
}

func (h *Hub) abandonAll() {
	h.mu.Lock()
	abandoned := h.pending
	h.pending = make(map[string]chan selection)
	h.mu.Unlock()

	for _, answer := range abandoned {
		answer <- selection{}
	}
}

// cancel tells the windows to close the dialog for id; it does not block.
func (h *Hub) cancel(id string) {
	go func() {
		select {
		case h.Broadcast <- WSMessage{Type: PickCancelType, ID: id}:
		case <-h.quit:
		}
	}()
}

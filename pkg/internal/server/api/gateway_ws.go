package api

import (
	"sync"

	"github.com/callspace/conferencing/pkg/internal/models"
	"github.com/callspace/conferencing/pkg/internal/services"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

// unifiedGateway is the push connection of one user client. Listener
// callbacks run on the notifier worker while this goroutine reads
// commands, so writes go through a shared lock.
func unifiedGateway(c *websocket.Conn) {
	user := c.Locals("userId").(string)
	client, _ := c.Locals("clientId").(string)
	if client == "" {
		client = uuid.NewString()
	}

	var writeLock sync.Mutex
	push := func(action string, payload any) {
		writeLock.Lock()
		defer writeLock.Unlock()
		_ = c.WriteMessage(websocket.TextMessage, models.UnifiedCommand{
			Action:  action,
			Payload: payload,
		}.Marshal())
	}

	listener := &services.UserCallListener{
		UserID:   user,
		ClientID: client,
		OnStateChanged: func(update models.CallUpdate) {
			push("calls.state", update)
		},
		OnPartJoined: func(update models.CallUpdate) {
			push("calls.joined", update)
		},
		OnPartLeaved: func(update models.CallUpdate) {
			push("calls.leaved", update)
		},
	}

	// Push connection
	services.Registry.Add(listener)
	services.Bus.AnnounceInit(user, client)

	// Event loop
	var task models.UnifiedCommand

	var packet []byte
	var err error

	for {
		if _, packet, err = c.ReadMessage(); err != nil {
			break
		} else if err = jsoniter.Unmarshal(packet, &task); err != nil {
			push("error", "unable to unmarshal your command, requires json request")
			continue
		}

		switch task.Action {
		case "get_calls_state":
			if briefs, err := services.Calls.GetUserCalls(user); err != nil {
				push("error", err.Error())
			} else {
				push("calls.state.all", briefs)
			}
		case "ping":
			push("pong", nil)
		default:
			push("error", "unknown command")
		}
	}

	// Pop connection
	services.Bus.AnnounceClose(user, client)
	services.Registry.Remove(listener)
}

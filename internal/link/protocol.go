package link

import (
	"context"
	"encoding/json"
)

// Command names carried on the wire. The first group flows from the
// world daemon to the proxy, the second the other way.
const (
	cmdEmitToObject               = "emit_to_object"
	cmdWhoConnected               = "who_connected"
	cmdDisconnectSessionsOnObject = "disconnect_sessions_on_object"
	cmdShutdownProxy              = "shutdown_proxy"

	cmdSendThroughObject                      = "send_through_object"
	cmdCreatePlayerObject                     = "create_player_object"
	cmdNotifyFirstSessionConnectedOnObject    = "notify_first_session_connected_on_object"
	cmdTriggerAfterSessionDisconnectForObject = "trigger_after_session_disconnect_for_object"
)

type objectRefPayload struct {
	ObjectID int64 `json:"object_id"`
}

type emitPayload struct {
	ObjectID int64  `json:"object_id"`
	Message  string `json:"message"`
}

type whoConnectedReply struct {
	Accounts []string `json:"accounts"`
}

type disconnectSessionsReply struct {
	NumSessionsClosed int `json:"num_sessions_closed"`
}

type sendThroughObjectPayload struct {
	ObjectID int64  `json:"object_id"`
	Input    string `json:"input"`
}

type createPlayerPayload struct {
	Username string `json:"username"`
}

type createPlayerReply struct {
	ObjectID int64 `json:"object_id"`
}

// ProxyHandler is what the proxy daemon exposes to the world over the
// link.
type ProxyHandler interface {
	// EmitToObject delivers a message to every session controlling the
	// object. Objects with no sessions are not an error.
	EmitToObject(objectID int64, message string) error

	// WhoConnected reports the usernames of all authenticated sessions.
	WhoConnected() ([]string, error)

	// DisconnectSessionsOnObject closes every session controlling the
	// object and reports how many were closed.
	DisconnectSessionsOnObject(objectID int64) (int, error)

	// ShutdownProxy asks the proxy process to exit.
	ShutdownProxy() error
}

// WorldHandler is what the world daemon exposes to the proxy over the
// link.
type WorldHandler interface {
	// SendThroughObject runs player input through the object's command
	// handler.
	SendThroughObject(objectID int64, input string) error

	// CreatePlayerObject provisions a player object for a newly created
	// account and returns its id.
	CreatePlayerObject(username string) (int64, error)

	// NotifyFirstSessionConnectedOnObject fires the object's connect
	// hook. Sent only for the first simultaneous session.
	NotifyFirstSessionConnectedOnObject(objectID int64) error

	// TriggerAfterSessionDisconnectForObject fires the object's
	// disconnect hook once its last session has gone.
	TriggerAfterSessionDisconnectForObject(objectID int64) error
}

func proxyHandlerTable(h ProxyHandler) map[string]HandlerFunc {
	return map[string]HandlerFunc{
		cmdEmitToObject: func(payload json.RawMessage) (any, error) {
			var req emitPayload
			if err := json.Unmarshal(payload, &req); err != nil {
				return nil, err
			}
			return nil, h.EmitToObject(req.ObjectID, req.Message)
		},
		cmdWhoConnected: func(payload json.RawMessage) (any, error) {
			accounts, err := h.WhoConnected()
			if err != nil {
				return nil, err
			}
			return &whoConnectedReply{Accounts: accounts}, nil
		},
		cmdDisconnectSessionsOnObject: func(payload json.RawMessage) (any, error) {
			var req objectRefPayload
			if err := json.Unmarshal(payload, &req); err != nil {
				return nil, err
			}
			closed, err := h.DisconnectSessionsOnObject(req.ObjectID)
			if err != nil {
				return nil, err
			}
			return &disconnectSessionsReply{NumSessionsClosed: closed}, nil
		},
		cmdShutdownProxy: func(payload json.RawMessage) (any, error) {
			return nil, h.ShutdownProxy()
		},
	}
}

func worldHandlerTable(h WorldHandler) map[string]HandlerFunc {
	return map[string]HandlerFunc{
		cmdSendThroughObject: func(payload json.RawMessage) (any, error) {
			var req sendThroughObjectPayload
			if err := json.Unmarshal(payload, &req); err != nil {
				return nil, err
			}
			return nil, h.SendThroughObject(req.ObjectID, req.Input)
		},
		cmdCreatePlayerObject: func(payload json.RawMessage) (any, error) {
			var req createPlayerPayload
			if err := json.Unmarshal(payload, &req); err != nil {
				return nil, err
			}
			objectID, err := h.CreatePlayerObject(req.Username)
			if err != nil {
				return nil, err
			}
			return &createPlayerReply{ObjectID: objectID}, nil
		},
		cmdNotifyFirstSessionConnectedOnObject: func(payload json.RawMessage) (any, error) {
			var req objectRefPayload
			if err := json.Unmarshal(payload, &req); err != nil {
				return nil, err
			}
			return nil, h.NotifyFirstSessionConnectedOnObject(req.ObjectID)
		},
		cmdTriggerAfterSessionDisconnectForObject: func(payload json.RawMessage) (any, error) {
			var req objectRefPayload
			if err := json.Unmarshal(payload, &req); err != nil {
				return nil, err
			}
			return nil, h.TriggerAfterSessionDisconnectForObject(req.ObjectID)
		},
	}
}

// peerSource yields the currently connected peer, if any. The server and
// dialer both implement it so the typed clients survive reconnects.
type peerSource interface {
	currentPeer() (*Peer, error)
}

// ProxyClient is the world daemon's typed handle for calling the proxy.
type ProxyClient struct {
	source peerSource
}

// EmitToObject delivers a message to the sessions controlling an object.
func (c *ProxyClient) EmitToObject(ctx context.Context, objectID int64, message string) error {
	peer, err := c.source.currentPeer()
	if err != nil {
		return err
	}
	return peer.Call(ctx, cmdEmitToObject, &emitPayload{ObjectID: objectID, Message: message}, nil)
}

// WhoConnected reports the usernames of all authenticated sessions.
func (c *ProxyClient) WhoConnected(ctx context.Context) ([]string, error) {
	peer, err := c.source.currentPeer()
	if err != nil {
		return nil, err
	}
	var reply whoConnectedReply
	if err := peer.Call(ctx, cmdWhoConnected, nil, &reply); err != nil {
		return nil, err
	}
	return reply.Accounts, nil
}

// DisconnectSessionsOnObject closes every session controlling an object.
func (c *ProxyClient) DisconnectSessionsOnObject(ctx context.Context, objectID int64) (int, error) {
	peer, err := c.source.currentPeer()
	if err != nil {
		return 0, err
	}
	var reply disconnectSessionsReply
	if err := peer.Call(ctx, cmdDisconnectSessionsOnObject, &objectRefPayload{ObjectID: objectID}, &reply); err != nil {
		return 0, err
	}
	return reply.NumSessionsClosed, nil
}

// ShutdownProxy asks the proxy process to exit.
func (c *ProxyClient) ShutdownProxy(ctx context.Context) error {
	peer, err := c.source.currentPeer()
	if err != nil {
		return err
	}
	return peer.Call(ctx, cmdShutdownProxy, nil, nil)
}

// WorldClient is the proxy daemon's typed handle for calling the world.
type WorldClient struct {
	source peerSource
}

// SendThroughObject runs player input through an object's command
// handler on the world side.
func (c *WorldClient) SendThroughObject(ctx context.Context, objectID int64, input string) error {
	peer, err := c.source.currentPeer()
	if err != nil {
		return err
	}
	return peer.Call(ctx, cmdSendThroughObject, &sendThroughObjectPayload{ObjectID: objectID, Input: input}, nil)
}

// CreatePlayerObject provisions a player object for a new account.
func (c *WorldClient) CreatePlayerObject(ctx context.Context, username string) (int64, error) {
	peer, err := c.source.currentPeer()
	if err != nil {
		return 0, err
	}
	var reply createPlayerReply
	if err := peer.Call(ctx, cmdCreatePlayerObject, &createPlayerPayload{Username: username}, &reply); err != nil {
		return 0, err
	}
	return reply.ObjectID, nil
}

// NotifyFirstSessionConnectedOnObject fires an object's connect hook.
func (c *WorldClient) NotifyFirstSessionConnectedOnObject(ctx context.Context, objectID int64) error {
	peer, err := c.source.currentPeer()
	if err != nil {
		return err
	}
	return peer.Call(ctx, cmdNotifyFirstSessionConnectedOnObject, &objectRefPayload{ObjectID: objectID}, nil)
}

// TriggerAfterSessionDisconnectForObject fires an object's disconnect
// hook.
func (c *WorldClient) TriggerAfterSessionDisconnectForObject(ctx context.Context, objectID int64) error {
	peer, err := c.source.currentPeer()
	if err != nil {
		return err
	}
	return peer.Call(ctx, cmdTriggerAfterSessionDisconnectForObject, &objectRefPayload{ObjectID: objectID}, nil)
}

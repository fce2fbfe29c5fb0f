package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wardenbot/internal/core/domain"
	"wardenbot/internal/core/ports"

	"github.com/google/uuid"
)

// Bridge exposes the adapter link as the outbound collaborator ports.
// Messages are fire-and-forget frames; role queries and restriction
// commands are correlated request/response pairs.
type Bridge struct {
	server *WebSocketServer
}

var (
	_ ports.Messenger  = (*Bridge)(nil)
	_ ports.RoleLookup = (*Bridge)(nil)
	_ ports.Restrictor = (*Bridge)(nil)
)

func NewBridge(server *WebSocketServer) *Bridge {
	return &Bridge{server: server}
}

type messagePayload struct {
	GroupID   domain.GroupID   `json:"group_id,omitempty"`
	AccountID domain.AccountID `json:"account_id,omitempty"`
	Text      string           `json:"text"`
}

type rolePayload struct {
	GroupID   domain.GroupID   `json:"group_id"`
	AccountID domain.AccountID `json:"account_id"`
}

type roleResponse struct {
	IsOwner bool   `json:"is_owner"`
	Error   string `json:"error,omitempty"`
}

type restrictPayload struct {
	GroupID   domain.GroupID   `json:"group_id"`
	AccountID domain.AccountID `json:"account_id"`
	// Seconds the restriction lasts. Zero means permanent.
	DurationSeconds int64 `json:"duration_seconds"`
}

type ackResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (b *Bridge) SendToGroup(ctx context.Context, group domain.GroupID, text string) error {
	return b.server.send(Envelope{
		Type:    "message",
		Payload: mustMarshal(messagePayload{GroupID: group, Text: text}),
	})
}

func (b *Bridge) SendToAccount(ctx context.Context, account domain.AccountID, text string) error {
	return b.server.send(Envelope{
		Type:    "message",
		Payload: mustMarshal(messagePayload{AccountID: account, Text: text}),
	})
}

func (b *Bridge) IsOwner(ctx context.Context, group domain.GroupID, account domain.AccountID) (bool, error) {
	raw, err := b.server.request(ctx, Envelope{
		Type:    "role_query",
		ID:      uuid.New().String(),
		Payload: mustMarshal(rolePayload{GroupID: group, AccountID: account}),
	})
	if err != nil {
		return false, err
	}

	var resp roleResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return false, fmt.Errorf("invalid role_query response: %w", err)
	}
	if resp.Error != "" {
		return false, fmt.Errorf("role_query failed: %s", resp.Error)
	}
	return resp.IsOwner, nil
}

func (b *Bridge) Restrict(ctx context.Context, group domain.GroupID, account domain.AccountID, d time.Duration) error {
	return b.command(ctx, "restrict", restrictPayload{
		GroupID:         group,
		AccountID:       account,
		DurationSeconds: int64(d / time.Second),
	})
}

func (b *Bridge) Unrestrict(ctx context.Context, group domain.GroupID, account domain.AccountID) error {
	return b.command(ctx, "unrestrict", restrictPayload{
		GroupID:   group,
		AccountID: account,
	})
}

func (b *Bridge) command(ctx context.Context, kind string, payload restrictPayload) error {
	raw, err := b.server.request(ctx, Envelope{
		Type:    kind,
		ID:      uuid.New().String(),
		Payload: mustMarshal(payload),
	})
	if err != nil {
		return err
	}

	var resp ackResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("invalid %s response: %w", kind, err)
	}
	if !resp.OK {
		return fmt.Errorf("%s rejected by adapter: %s", kind, resp.Error)
	}
	return nil
}

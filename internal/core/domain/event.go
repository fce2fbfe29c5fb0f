package domain

// InboundEvent is one text/command event delivered by the transport.
type InboundEvent struct {
	Group            GroupID   `json:"group_id"`
	GroupTitle       string    `json:"group_title,omitempty"`
	Actor            AccountID `json:"actor_id"`
	ActorHandle      string    `json:"actor_handle,omitempty"`
	ActorDisplayName string    `json:"actor_display_name,omitempty"`
	ActorIsOwner     bool      `json:"actor_is_owner,omitempty"`
	Text             string    `json:"text"`

	// RepliedTo is set when the event replies to another member's message.
	RepliedTo       AccountID `json:"replied_to_id,omitempty"`
	RepliedToHandle string    `json:"replied_to_handle,omitempty"`
}

package realtime

import (
	"context"

	"github.com/ayush/chatter/backend/internal/models"
)

// Channel is the pluggable presence/broadcast collaborator. A socket gateway
// registers users as they connect and deregisters them on disconnect; every
// membership change broadcasts the full online-id set. Message delivery is
// best-effort; senders must not assume a channel is attached.
type Channel interface {
	// Register marks a user online and broadcasts the updated online set.
	Register(ctx context.Context, userID string) error
	// Deregister marks a user offline and broadcasts the updated online set.
	Deregister(ctx context.Context, userID string) error
	// Online returns the ids of all currently connected users.
	Online(ctx context.Context) ([]string, error)
	// MessageSent announces a newly persisted message to the recipient.
	MessageSent(ctx context.Context, msg *models.Message) error
}

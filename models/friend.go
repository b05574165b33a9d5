package models

import "time"

type FriendRequestStatus string

const (
	FriendRequestPending   FriendRequestStatus = "pending"
	FriendRequestAccepted  FriendRequestStatus = "accepted"
	FriendRequestRejected  FriendRequestStatus = "rejected"
	FriendRequestCancelled FriendRequestStatus = "cancelled"
)

// FriendRequest covers the whole friendship lifecycle: an accepted request
// is the friendship. At most one row exists per unordered user pair.
type FriendRequest struct {
	ID         int                 `json:"id" db:"id"`
	SenderID   int                 `json:"sender_id" db:"sender_id"`
	ReceiverID int                 `json:"receiver_id" db:"receiver_id"`
	Status     FriendRequestStatus `json:"status" db:"status"`
	CreatedAt  time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at" db:"updated_at"`

	Sender   *User `json:"sender,omitempty" db:"-"`
	Receiver *User `json:"receiver,omitempty" db:"-"`
}

// Other returns the counterpart of userID in this request.
func (f *FriendRequest) Other(userID int) int {
	if f.SenderID == userID {
		return f.ReceiverID
	}
	return f.SenderID
}

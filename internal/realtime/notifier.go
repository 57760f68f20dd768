package realtime

import (
	"time"

	"mingle/internal/metrics"
	"mingle/internal/models"
)

// Notifier formats typed notification events and routes them to the
// recipient's live sessions. It is stateless: no persistence, no delivery
// guarantee, no read tracking.
type Notifier struct {
	registry *Registry
}

func NewNotifier(registry *Registry) *Notifier {
	return &Notifier{registry: registry}
}

func (n *Notifier) push(to string, notif models.Notification) {
	notif.Timestamp = time.Now()
	metrics.NotificationsTotal.WithLabelValues(notif.Type).Inc()
	n.registry.BroadcastTo(to, NotificationEvent{
		Type:         EventNotification,
		Notification: notif,
	})
}

func (n *Notifier) FollowRequest(followerID, followingID string) {
	n.push(followingID, models.Notification{
		Type:    models.NotifFollowRequest,
		From:    followerID,
		To:      followingID,
		Message: "sent you a follow request",
	})
}

func (n *Notifier) FollowAccepted(followerID, followingID string) {
	n.push(followerID, models.Notification{
		Type:    models.NotifFollowAccepted,
		From:    followingID,
		To:      followerID,
		Message: "accepted your follow request",
	})
}

func (n *Notifier) PostLiked(ownerID, postID, likedBy string) {
	n.push(ownerID, models.Notification{
		Type:    models.NotifPostLiked,
		From:    likedBy,
		To:      ownerID,
		Message: "liked your post",
		PostID:  postID,
	})
}

func (n *Notifier) NewComment(ownerID, postID, commentID, commentedBy string) {
	n.push(ownerID, models.Notification{
		Type:      models.NotifNewComment,
		From:      commentedBy,
		To:        ownerID,
		Message:   "commented on your post",
		PostID:    postID,
		CommentID: commentID,
	})
}

func (n *Notifier) MessageReceived(chatID, senderID, receiverID string) {
	n.push(receiverID, models.Notification{
		Type:    models.NotifMessageReceived,
		From:    senderID,
		To:      receiverID,
		Message: "sent you a message",
		ChatID:  chatID,
	})
}

package inkwell

import "log"

// Notifier receives the publish event fired when a post first reaches
// the published state. Delivery is fire-and-forget: implementations
// must not block and there is no retry.
type Notifier interface {
	PostPublished(post Post, author User)
}

// LogNotifier writes publish events to the process log. It is the
// default sink when none is configured.
type LogNotifier struct {
	Logger *log.Logger
}

func (n LogNotifier) PostPublished(post Post, author User) {
	if n.Logger != nil {
		n.Logger.Printf("post published: %q by %s", post.Title, author.Username)
		return
	}
	log.Printf("post published: %q by %s", post.Title, author.Username)
}

// NopNotifier discards publish events.
type NopNotifier struct{}

func (NopNotifier) PostPublished(Post, User) {}

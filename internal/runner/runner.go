package runner

import (
	"sync"

	"github.com/hperssn/buildcalc/internal/domain"
)

// eventBuffer bounds the replies kept for a slow or absent stream reader.
const eventBuffer = 16

// conversation owns one identity's session. Its mutex serializes every
// transition of that identity.
type conversation struct {
	mu sync.Mutex

	session *domain.Session
	events  chan domain.Reply
	last    *domain.Reply
}

func newConversation(identity string) *conversation {
	return &conversation{
		session: domain.NewSession("", identity),
		events:  make(chan domain.Reply, eventBuffer),
	}
}

// publish hands reply to the stream reader without ever blocking the
// transition. When the buffer is full the oldest reply makes room and
// publish reports false. Callers hold c.mu.
func (c *conversation) publish(reply domain.Reply) bool {
	c.last = &reply
	select {
	case c.events <- reply:
		return true
	default:
	}

	select {
	case <-c.events:
	default:
	}
	select {
	case c.events <- reply:
	default:
	}
	return false
}

// subscribe discards replies nobody read and queues the latest one, so a
// new reader starts from the screen the identity is on.
func (c *conversation) subscribe() <-chan domain.Reply {
	c.mu.Lock()
	defer c.mu.Unlock()

	for drained := false; !drained; {
		select {
		case <-c.events:
		default:
			drained = true
		}
	}
	if c.last != nil {
		c.events <- *c.last
	}
	return c.events
}

func (c *conversation) Session() *domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Clone()
}

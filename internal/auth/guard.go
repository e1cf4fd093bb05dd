package auth

import (
	"sync"
)

// State 是守卫当前的渲染状态
type State int

const (
	StateLoading State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "loading"
	}
}

// Source 提供登录状态的订阅。回调在订阅时至少触发一次，之后在会话变化时再次触发。
// err 非空表示状态源本身出错，守卫会按未登录处理。
type Source interface {
	OnAuthStateChanged(fn func(session *Session, err error)) (unsubscribe func())
	SignOut()
}

// Guard gates a protected view on the state reported by a Source.
type Guard struct {
	source Source

	mu          sync.Mutex
	state       State
	session     *Session
	mounted     bool
	unsubscribe func()
	onChange    func(State, *Session)
}

// NewGuard 构造一个处于 Loading 状态的守卫
func NewGuard(source Source) *Guard {
	return &Guard{source: source, state: StateLoading}
}

// Mount subscribes to the source. onChange is invoked on every state
// transition, including the first one out of Loading; it may be nil.
func (g *Guard) Mount(onChange func(State, *Session)) {
	if onChange == nil {
		onChange = func(State, *Session) {}
	}

	g.mu.Lock()
	if g.mounted {
		g.mu.Unlock()
		return
	}
	g.mounted = true
	g.onChange = onChange
	g.mu.Unlock()

	unsubscribe := g.source.OnAuthStateChanged(g.handle)

	g.mu.Lock()
	if !g.mounted {
		// Unmount ran while subscribing.
		g.mu.Unlock()
		unsubscribe()
		return
	}
	g.unsubscribe = unsubscribe
	g.mu.Unlock()
}

// Unmount releases the subscription. Later callbacks are ignored.
func (g *Guard) Unmount() {
	g.mu.Lock()
	unsubscribe := g.unsubscribe
	g.mounted = false
	g.unsubscribe = nil
	g.onChange = nil
	g.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// State returns the current state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Session returns the session of the latest authenticated callback.
func (g *Guard) Session() *Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session
}

func (g *Guard) handle(session *Session, err error) {
	next := StateAuthenticated
	if err != nil || session == nil {
		next = StateUnauthenticated
		session = nil
	}

	g.mu.Lock()
	if !g.mounted {
		g.mu.Unlock()
		return
	}
	changed := g.state != next
	g.state = next
	g.session = session
	onChange := g.onChange
	g.mu.Unlock()

	if changed {
		onChange(next, session)
	}
}

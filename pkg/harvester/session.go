package harvester

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"wallgrab/pkg/logger"
)

// State is where a session stands in the manual login flow
type State int

const (
	NotAuthenticated State = iota
	AwaitingManualLogin
	Ready
	Closed
)

func (s State) String() string {
	switch s {
	case NotAuthenticated:
		return "not_authenticated"
	case AwaitingManualLogin:
		return "awaiting_manual_login"
	case Ready:
		return "ready"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// LoginGate blocks until the user has finished logging in by hand
type LoginGate interface {
	Wait(ctx context.Context) error
}

// ConsoleGate prompts on Out and waits for a line on In
type ConsoleGate struct {
	In  io.Reader
	Out io.Writer
}

// Wait prints the login prompt and returns after Enter is pressed
func (g *ConsoleGate) Wait(ctx context.Context) error {
	fmt.Fprintln(g.Out, "Logged in accounts see 100 posts instead of 25")
	fmt.Fprint(g.Out, "Log into your account in the browser window. Press enter when you're done...")

	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(g.In).ReadString('\n')
		if err == io.EOF {
			err = nil
		}
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Session owns one browser for the lifetime of a harvest
type Session struct {
	browser Browser
	gate    LoginGate
	origin  string
	state   State
	logger  logger.Logger
	once    sync.Once
}

// NewSession wraps browser. Close must be called on every exit path.
func NewSession(browser Browser, gate LoginGate, origin string, log logger.Logger) *Session {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Session{
		browser: browser,
		gate:    gate,
		origin:  origin,
		state:   NotAuthenticated,
		logger:  log,
	}
}

// State returns the current login state
func (s *Session) State() State {
	return s.state
}

// Login opens the origin site and hands control to the user until the gate
// releases
func (s *Session) Login(ctx context.Context) error {
	if s.state != NotAuthenticated {
		return fmt.Errorf("cannot log in from state %s", s.state)
	}

	if _, err := s.browser.Navigate(ctx, s.origin); err != nil {
		return fmt.Errorf("open %s: %w", s.origin, err)
	}
	s.state = AwaitingManualLogin
	s.logger.InfoWithFields("waiting for manual login", map[string]interface{}{"origin": s.origin})

	if err := s.gate.Wait(ctx); err != nil {
		return fmt.Errorf("login aborted: %w", err)
	}
	s.state = Ready
	return nil
}

// Navigate loads url in the session's browser
func (s *Session) Navigate(ctx context.Context, url string) (string, error) {
	if s.state != Ready {
		return "", fmt.Errorf("session is %s, not ready", s.state)
	}
	return s.browser.Navigate(ctx, url)
}

// HTML returns the current document
func (s *Session) HTML(ctx context.Context) (string, error) {
	if s.state != Ready {
		return "", fmt.Errorf("session is %s, not ready", s.state)
	}
	return s.browser.HTML(ctx)
}

// Close releases the browser. Later calls are no-ops.
func (s *Session) Close() error {
	var err error
	s.once.Do(func() {
		s.state = Closed
		err = s.browser.Close()
	})
	return err
}

package sessions

import (
	"github.com/gorilla/sessions"
)

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

type Session struct {
	base      *sessions.Session
	needsSave bool
}

func (s *Session) NeedsSave() bool {
	return s.needsSave
}

// AddFlash adds a message of the given kind that is shown on the next
// rendered page.
func (s *Session) AddFlash(kind, msg string) {
	s.needsSave = true
	s.base.AddFlash(msg, kind)
}

// ConsumeFlashes removes and returns the messages of the given kind.
func (s *Session) ConsumeFlashes(kind string) []string {
	flashes := s.base.Flashes(kind)
	if len(flashes) == 0 {
		return nil
	}

	s.needsSave = true

	msgs := make([]string, 0, len(flashes))
	for _, f := range flashes {
		if msg, ok := f.(string); ok {
			msgs = append(msgs, msg)
		}
	}

	return msgs
}

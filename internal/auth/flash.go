package auth

import "net/http"

const flashSessionName = "pycsa_flash"

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot message shown after a redirect.
type Flash struct {
	Kind    string
	Message string
}

// AddFlash queues a message for the next page render.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, kind, message string) error {
	session, _ := m.store.Get(r, flashSessionName)
	session.AddFlash(Flash{Kind: kind, Message: message})
	return session.Save(r, w)
}

// Flashes returns and clears the queued messages.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	session, err := m.store.Get(r, flashSessionName)
	if err != nil {
		return nil
	}
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	session.Save(r, w)

	flashes := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			flashes = append(flashes, f)
		}
	}
	return flashes
}

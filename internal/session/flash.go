package session

import "encoding/json"

const (
	flashKey = "flashes"
	adminKey = "admin"
)

// Flash is a one-shot notice carried across a redirect.
type Flash struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// AddFlash queues a notice for the next rendered page.
func AddFlash(c Cache, kind, message string) {
	flashes := peekFlashes(c)
	flashes = append(flashes, Flash{Type: kind, Message: message})
	raw, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	c.Set(flashKey, string(raw))
}

// TakeFlashes returns and clears the queued notices.
func TakeFlashes(c Cache) []Flash {
	flashes := peekFlashes(c)
	c.Delete(flashKey)
	return flashes
}

func peekFlashes(c Cache) []Flash {
	raw, ok := c.Get(flashKey)
	if !ok || raw == "" {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal([]byte(raw), &flashes); err != nil {
		return nil
	}
	return flashes
}

// SetAdmin marks the visitor as an authenticated moderator.
func SetAdmin(c Cache, username string) {
	c.Set(adminKey, username)
}

// Admin returns the moderator name if the visitor is signed in as admin.
func Admin(c Cache) (string, bool) {
	name, ok := c.Get(adminKey)
	return name, ok && name != ""
}

// ClearAdmin signs the moderator out.
func ClearAdmin(c Cache) {
	c.Delete(adminKey)
}

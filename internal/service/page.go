package service

// DefaultPageLimit applies when a request does not set limit
const DefaultPageLimit = 50

// Page is a limit/offset window, echoed back in list responses
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Normalize fills defaults and clamps negatives
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

package model

// Session is one titled conversation thread. Messages are kept in
// chronological order.
type Session struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Messages []Message `json:"messages"`
	Pinned   bool      `json:"pinned"`
	Archived bool      `json:"archived"`
}

// Clone returns a copy that shares no message storage with s.
func (s Session) Clone() Session {
	out := s
	if s.Messages != nil {
		out.Messages = make([]Message, len(s.Messages))
		copy(out.Messages, s.Messages)
	}
	return out
}

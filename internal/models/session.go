package models

// SessionState holds an authenticated session together with the booking
// draft the creation workflow builds up (selected date, selected time).
type SessionState struct {
	Token string                 `json:"token"`
	Email string                 `json:"email"`
	Step  string                 `json:"step"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

func (s *SessionState) GetString(key string) string {
	if s.Data == nil {
		return ""
	}
	val, ok := s.Data[key]
	if !ok {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

// Set stores a draft value, allocating the map on first use.
func (s *SessionState) Set(key string, value interface{}) {
	if s.Data == nil {
		s.Data = make(map[string]interface{})
	}
	s.Data[key] = value
}

// ClearDraft drops the slot selection and returns the workflow to its
// initial step. The session itself stays valid.
func (s *SessionState) ClearDraft() {
	s.Step = StepSlotUnselected
	delete(s.Data, "date")
	delete(s.Data, "time")
}

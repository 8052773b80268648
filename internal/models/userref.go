package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UserRef points at a user. The backend sends either the bare user id or
// an embedded summary of the user.
type UserRef struct {
	ID    string `json:"_id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

func (r *UserRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	type summary UserRef
	var s summary
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("user reference: %w", err)
	}
	*r = UserRef(s)
	return nil
}

func (r UserRef) MarshalJSON() ([]byte, error) {
	if r.Name == "" && r.Email == "" {
		return json.Marshal(r.ID)
	}
	type summary UserRef
	return json.Marshal(summary(r))
}

// Resolved reports whether the backend embedded the user summary
func (r *UserRef) Resolved() bool {
	return r != nil && r.Name != ""
}

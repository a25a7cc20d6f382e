package models

// User lives in the in-memory directory, keyed by email (case-sensitive).
type User struct {
	Name     string   `json:"name" yaml:"name"`
	Email    string   `json:"email" yaml:"email"`
	Password string   `json:"-" yaml:"password"`
	Role     string   `json:"role" yaml:"role"` // player, owner
	Avatar   string   `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Friends  []string `json:"friends" yaml:"friends"` // friend emails
}

func (u *User) IsOwner() bool {
	return u.Role == RoleOwner
}

func (u *User) HasFriend(email string) bool {
	for _, f := range u.Friends {
		if f == email {
			return true
		}
	}
	return false
}

// Clone copies the user including the friends list.
func (u *User) Clone() *User {
	c := *u
	c.Friends = append([]string(nil), u.Friends...)
	return &c
}

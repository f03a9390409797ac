package users

import "time"

// User is an account capable of authenticating and owning events and
// registrations. The password hash lives in an unexported field so it can
// only leave this package through the comparison path, never through a
// generic accessor or JSON marshaling.
type User struct {
	ID        int64
	Username  string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time

	passwordHash string
}

// Rehydrate reconstructs a User from persisted columns. It exists for the
// storage layer; application code obtains users through Service.
func Rehydrate(id int64, username, email, passwordHash string, createdAt, updatedAt time.Time) User {
	return User{
		ID:           id,
		Username:     username,
		Email:        email,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
		passwordHash: passwordHash,
	}
}

// PasswordVerifier is the credential codec's comparison path.
type PasswordVerifier interface {
	Verify(plain, hash string) bool
}

// PasswordMatches reports whether plain matches the stored hash.
func (u User) PasswordMatches(verifier PasswordVerifier, plain string) bool {
	if u.passwordHash == "" {
		return false
	}
	return verifier.Verify(plain, u.passwordHash)
}

// PublicUser is the only representation of a user that crosses the API
// boundary.
type PublicUser struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

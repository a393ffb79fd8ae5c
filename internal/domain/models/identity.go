package models

// Identity is the current user context. A guest identity persists to local
// storage only; an authenticated identity persists to the remote backend.
type Identity struct {
	UserID string `json:"user_id"`
	Guest  bool   `json:"guest"`
}

// GuestIdentity is the fixed identity used when no credentials are presented.
var GuestIdentity = Identity{UserID: "guest", Guest: true}

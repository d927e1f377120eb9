package api

// RegisterRequest is the body of POST /users.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is returned by POST /users and GET /users/me.
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// TokenResponse is returned by GET /connect.
type TokenResponse struct {
	Token string `json:"token"`
}

// CreateFileRequest is the body of POST /files. Data carries the base64
// encoded payload for non-folder kinds.
type CreateFileRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID string `json:"parentId,omitempty"`
	IsPublic bool   `json:"isPublic,omitempty"`
	Data     string `json:"data,omitempty"`
}

// FileResponse is the wire shape of a file record.
type FileResponse struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsPublic bool   `json:"isPublic"`
	ParentID string `json:"parentId"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	DB       bool `json:"db"`
	Sessions bool `json:"sessions"`
}

// StatsResponse is returned by GET /stats.
type StatsResponse struct {
	Users int64 `json:"users"`
	Files int64 `json:"files"`
}

// ErrorResponse is the body of every error reply. The shape is identical for
// all failures of a given status so that "not found" and "not yours" cannot
// be told apart.
type ErrorResponse struct {
	Error string `json:"error"`
}

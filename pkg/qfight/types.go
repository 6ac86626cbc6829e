package qfight

// Role values accepted by the account API
const (
	RolePlayer = "Player"
	RoleAdmin  = "Admin"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginData is returned on a successful login
type LoginData struct {
	AccountID  int64  `json:"account_id"`
	PlayerID   int64  `json:"player_id,omitempty"`
	Username   string `json:"username,omitempty"`
	PlayerName string `json:"player_name,omitempty"`
	Role       string `json:"role,omitempty"`
}

type RegisterRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	PlayerName string `json:"player_name"`
	Role       string `json:"role"`
}

// RegisterPayload wraps the new account with the username of the admin performing the registration
type RegisterPayload struct {
	Username string          `json:"username"`
	Req      RegisterRequest `json:"req"`
}

type RegisterData struct {
	AccountID int64 `json:"account_id"`
	PlayerID  int64 `json:"player_id"`
}

// UpdateRequest is a partial update: nil fields are left untouched
type UpdateRequest struct {
	AccountID         int64              `json:"account_id"`
	Name              *string            `json:"name,omitempty"`
	Level             *int               `json:"level,omitempty"`
	Exp               *int               `json:"exp,omitempty"`
	Gold              *int               `json:"gold,omitempty"`
	Str               *int               `json:"str,omitempty"`
	Agi               *int               `json:"agi,omitempty"`
	Spd               *int               `json:"spd,omitempty"`
	MaxHP             *int               `json:"max_hp,omitempty"`
	Weapons           *[]string          `json:"weapons,omitempty"`
	Skills            *[]string          `json:"skills,omitempty"`
	Dressing          *map[string]string `json:"dressing,omitempty"`
	UnlockedDressings *[]string          `json:"unlocked_dressings,omitempty"`
	IsConcentrated    *bool              `json:"is_concentrated,omitempty"`
}

// UpdatePayload wraps an update with the username of the caller
type UpdatePayload struct {
	Username string        `json:"username"`
	Req      UpdateRequest `json:"req"`
}

type PlayerData struct {
	AccountID         int64             `json:"account_id"`
	PlayerID          int64             `json:"player_id"`
	Name              string            `json:"name"`
	Level             int               `json:"level"`
	Exp               int               `json:"exp"`
	Gold              int               `json:"gold"`
	Str               int               `json:"str"`
	Agi               int               `json:"agi"`
	Spd               int               `json:"spd"`
	MaxHP             int               `json:"max_hp"`
	Weapons           []string          `json:"weapons"`
	Skills            []string          `json:"skills"`
	Dressing          map[string]string `json:"dressing"`
	UnlockedDressings []string          `json:"unlocked_dressings"`
	IsConcentrated    bool              `json:"is_concentrated"`
}

// Envelope is the body shape shared by every endpoint; Detail is set on errors
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Ptr is a helper for building UpdateRequest literals
func Ptr[T any](v T) *T {
	return &v
}

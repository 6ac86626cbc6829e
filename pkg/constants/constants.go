package constants

// Environment keys read outside the config struct
const (
	ENV_APP_ENV   = "APP_ENV"
	ENV_DB_DRIVER = "DB_DRIVER"
	ENV_DSN       = "DSN"
)

// Gin context fields
const (
	DbField        = "_qfight_db"
	RequestIDField = "request_id"
	OperatorField  = "_qfight_operator"
)

// Player roles as stored by the game server
const (
	RolePlayer = "Player"
	RoleAdmin  = "Admin"
)

// Player defaults applied on registration and reset
const (
	DefaultLevel = 1
	DefaultExp   = 0
	DefaultGold  = 500
	DefaultStr   = 5
	DefaultAgi   = 5
	DefaultSpd   = 5
	DefaultMaxHP = 300
)

// Dressing slots
const (
	DressingHead   = "HEAD"
	DressingBody   = "BODY"
	DressingWeapon = "WEAPON"
)

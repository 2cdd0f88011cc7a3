package constants

import "time"

// Session and context keys
const (
	SessionCookieName   = "task_session"
	ContextKeyUserID    = "user_id"
	ContextKeyPrincipal = "principal"
	ContextKeyTaskID    = "task_id"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Accounts
const (
	MinUsernameLength  = 3
	MaxUsernameLength  = 150
	MinPasswordLength  = 6
	MaxPasswordBytes   = 72 // bcrypt input limit
	ResetTokenBytes    = 32
	ResetTokenLifetime = time.Hour
)

// Notification rooms
const (
	AdminRoom            = "admin_room"
	DepartmentRoomPrefix = "department_"
)

// DisplayDateLayout is the dd/mm/yyyy layout used in notification payloads.
const DisplayDateLayout = "02/01/2006"

// DeadlineNotSet is shown in place of a deadline that has not been assigned yet.
const DeadlineNotSet = "not set"

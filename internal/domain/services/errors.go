package services

import "errors"

// Sentinel errors returned by the domain services. Controllers map them to
// business codes with errors.Is.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrUserInactive         = errors.New("account is inactive")
	ErrLastAdmin            = errors.New("cannot remove the last admin")
	ErrBuildingNotFound     = errors.New("building not found")
	ErrBuildingNotEmpty     = errors.New("building still has properties")
	ErrPropertyNotFound     = errors.New("property not found")
	ErrMaintenanceNotFound  = errors.New("maintenance request not found")
	ErrInvalidTransition    = errors.New("status change not allowed")
	ErrInvalidAssignee      = errors.New("assignee must be maintenance staff or a manager")
	ErrCommentNotFound      = errors.New("comment not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrPaymentNotFound      = errors.New("levy payment not found")
	ErrPaymentNotPayable    = errors.New("levy is already paid or cancelled")
	ErrNoPropertiesToLevy   = errors.New("building has no properties to levy")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrInvalidPeriod        = errors.New("report period end is before its start")
	ErrForbidden            = errors.New("operation not permitted for this user")
)

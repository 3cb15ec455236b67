package code

// HTTP status codes.
const (
	// StatusOK - 200: success.
	StatusOK = 200
	// StatusCreated - 201: created.
	StatusCreated = 201
	// StatusBadRequest - 400: bad request.
	StatusBadRequest = 400
	// StatusUnauthorized - 401: unauthorized.
	StatusUnauthorized = 401
	// StatusForbidden - 403: forbidden.
	StatusForbidden = 403
	// StatusNotFound - 404: not found.
	StatusNotFound = 404
	// StatusConflict - 409: conflict.
	StatusConflict = 409
	// StatusTooManyRequests - 429: too many requests.
	StatusTooManyRequests = 429
	// StatusInternalServerError - 500: internal error.
	StatusInternalServerError = 500
	// StatusServiceUnavailable - 503: dependency down.
	StatusServiceUnavailable = 503
)

// Generic codes (100xxx).
const (
	// ErrSuccess - 200: success.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: unknown error.
	ErrUnknown
	// ErrBind - 400: request body could not be bound.
	ErrBind
	// ErrValidation - 400: request failed validation.
	ErrValidation
	// ErrTokenInvalid - 401: token invalid.
	ErrTokenInvalid
	// ErrTooManyRequests - 429: rate limited.
	ErrTooManyRequests
	// ErrForbidden - 403: role not allowed.
	ErrForbidden
	// ErrInvalidID - 400: path id is not a positive integer.
	ErrInvalidID
)

// User codes (101xxx).
const (
	// ErrUserNotFound - 404: user not found.
	ErrUserNotFound int = iota + 101000
	// ErrUserAlreadyExist - 409: email already registered.
	ErrUserAlreadyExist
	// ErrUserPasswordIncorrect - 401: bad credentials.
	ErrUserPasswordIncorrect
	// ErrUserInactive - 403: account disabled.
	ErrUserInactive
	// ErrUserLastAdmin - 409: the last admin cannot be removed or demoted.
	ErrUserLastAdmin
)

// Building and property codes (102xxx).
const (
	// ErrBuildingNotFound - 404: building not found.
	ErrBuildingNotFound int = iota + 102000
	// ErrBuildingHasProperties - 409: building still has lots.
	ErrBuildingHasProperties
	// ErrPropertyNotFound - 404: property not found.
	ErrPropertyNotFound
)

// Maintenance codes (103xxx).
const (
	// ErrMaintenanceNotFound - 404: request not found.
	ErrMaintenanceNotFound int = iota + 103000
	// ErrMaintenanceInvalidTransition - 409: status change not allowed.
	ErrMaintenanceInvalidTransition
	// ErrMaintenanceInvalidAssignee - 400: assignee cannot take work orders.
	ErrMaintenanceInvalidAssignee
	// ErrCommentNotFound - 404: comment not found.
	ErrCommentNotFound
	// ErrBackendUnavailable - 503: backend service failed.
	ErrBackendUnavailable
)

// Notification codes (104xxx).
const (
	// ErrNotificationNotFound - 404: notification not found.
	ErrNotificationNotFound int = iota + 104000
)

// Database codes (105xxx).
const (
	// ErrDatabase - 500: database error.
	ErrDatabase int = iota + 105000
	// ErrRecordNotFound - 404: record not found.
	ErrRecordNotFound
)

// Announcement codes (106xxx).
const (
	// ErrAnnouncementNotFound - 404: announcement not found.
	ErrAnnouncementNotFound int = iota + 106000
)

// Payment codes (107xxx).
const (
	// ErrPaymentNotFound - 404: levy not found.
	ErrPaymentNotFound int = iota + 107000
	// ErrPaymentNotPayable - 409: levy already paid or cancelled.
	ErrPaymentNotPayable
	// ErrLevyRunNoProperties - 400: building has no lots to levy.
	ErrLevyRunNoProperties
)

// Report codes (108xxx).
const (
	// ErrReportGeneration - 500: document rendering failed.
	ErrReportGeneration int = iota + 108000
	// ErrReportPeriod - 400: bad report period.
	ErrReportPeriod
)

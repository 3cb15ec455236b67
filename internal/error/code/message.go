package code

var codeMessageMap = map[int]string{
	ErrSuccess:         "success",
	ErrUnknown:         "unknown error",
	ErrBind:            "invalid request body",
	ErrValidation:      "request validation failed",
	ErrTokenInvalid:    "invalid authentication token",
	ErrTooManyRequests: "too many requests, please retry later",
	ErrForbidden:       "insufficient permissions",
	ErrInvalidID:       "invalid id",

	ErrUserNotFound:          "user not found",
	ErrUserAlreadyExist:      "email already registered",
	ErrUserPasswordIncorrect: "invalid email or password",
	ErrUserInactive:          "account is inactive",
	ErrUserLastAdmin:         "cannot remove the last admin",

	ErrBuildingNotFound:      "building not found",
	ErrBuildingHasProperties: "building still has properties",
	ErrPropertyNotFound:      "property not found",

	ErrMaintenanceNotFound:          "maintenance request not found",
	ErrMaintenanceInvalidTransition: "status change not allowed",
	ErrMaintenanceInvalidAssignee:   "assignee must be maintenance staff or a manager",
	ErrCommentNotFound:              "comment not found",
	ErrBackendUnavailable:           "backend service unavailable",

	ErrNotificationNotFound: "notification not found",

	ErrDatabase:       "database error",
	ErrRecordNotFound: "record not found",

	ErrAnnouncementNotFound: "announcement not found",

	ErrPaymentNotFound:     "levy payment not found",
	ErrPaymentNotPayable:   "levy is already paid or cancelled",
	ErrLevyRunNoProperties: "building has no properties to levy",

	ErrReportGeneration: "failed to generate report",
	ErrReportPeriod:     "invalid report period",
}

var codeStatusMap = map[int]int{
	ErrSuccess:         StatusOK,
	ErrUnknown:         StatusInternalServerError,
	ErrBind:            StatusBadRequest,
	ErrValidation:      StatusBadRequest,
	ErrTokenInvalid:    StatusUnauthorized,
	ErrTooManyRequests: StatusTooManyRequests,
	ErrForbidden:       StatusForbidden,
	ErrInvalidID:       StatusBadRequest,

	ErrUserNotFound:          StatusNotFound,
	ErrUserAlreadyExist:      StatusConflict,
	ErrUserPasswordIncorrect: StatusUnauthorized,
	ErrUserInactive:          StatusForbidden,
	ErrUserLastAdmin:         StatusConflict,

	ErrBuildingNotFound:      StatusNotFound,
	ErrBuildingHasProperties: StatusConflict,
	ErrPropertyNotFound:      StatusNotFound,

	ErrMaintenanceNotFound:          StatusNotFound,
	ErrMaintenanceInvalidTransition: StatusConflict,
	ErrMaintenanceInvalidAssignee:   StatusBadRequest,
	ErrCommentNotFound:              StatusNotFound,
	ErrBackendUnavailable:           StatusServiceUnavailable,

	ErrNotificationNotFound: StatusNotFound,

	ErrDatabase:       StatusInternalServerError,
	ErrRecordNotFound: StatusNotFound,

	ErrAnnouncementNotFound: StatusNotFound,

	ErrPaymentNotFound:     StatusNotFound,
	ErrPaymentNotPayable:   StatusConflict,
	ErrLevyRunNoProperties: StatusBadRequest,

	ErrReportGeneration: StatusInternalServerError,
	ErrReportPeriod:     StatusBadRequest,
}

// GetMessage returns the default message for a code
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "unknown error"
}

// GetStatus returns the HTTP status for a code
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}

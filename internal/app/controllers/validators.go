package controllers

import (
	"time"

	"strata-portal/internal/domain/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// DateLayout is the calendar date format used in request bodies and queries
const DateLayout = "2006-01-02"

// RegisterValidators adds the enum tags used by request bindings to gin's validator
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	tags := map[string]validator.Func{
		"maintenance_status": func(fl validator.FieldLevel) bool {
			return models.MaintenanceStatus(fl.Field().String()).Valid()
		},
		"maintenance_priority": func(fl validator.FieldLevel) bool {
			return models.MaintenancePriority(fl.Field().String()).Valid()
		},
		"user_role": func(fl validator.FieldLevel) bool {
			return models.UserRole(fl.Field().String()).Valid()
		},
		"levy_type": func(fl validator.FieldLevel) bool {
			return models.LevyType(fl.Field().String()).Valid()
		},
		"payment_status": func(fl validator.FieldLevel) bool {
			return models.PaymentStatus(fl.Field().String()).Valid()
		},
		"announcement_type": func(fl validator.FieldLevel) bool {
			return models.AnnouncementType(fl.Field().String()).Valid()
		},
		"date": func(fl validator.FieldLevel) bool {
			_, err := time.Parse(DateLayout, fl.Field().String())
			return err == nil
		},
	}

	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
}

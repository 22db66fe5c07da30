package util

import (
	"learnhub_backend/internal/model"
	"slices"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators 注册自定义 binding 规则
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("difficulty", func(fl validator.FieldLevel) bool {
		return slices.Contains(model.Difficulties, fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("period", func(fl validator.FieldLevel) bool {
		return slices.Contains(Periods, fl.Field().String())
	})
}

// ValidPeriod 空值视为 all
func ValidPeriod(period string) bool {
	return period == "" || slices.Contains(Periods, period)
}

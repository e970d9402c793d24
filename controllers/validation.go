package controllers

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/labmanager/labmanager-api/utils"
)

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags used by the request forms
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			return utils.IsISODate(fl.Field().String())
		})
	})
}

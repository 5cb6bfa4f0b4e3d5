package api

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/zanledger/server/internal/service"
)

var registerOnce sync.Once

// registerValidators adds the custom binding rules:
//
//	amount: a positive whole amount, Persian digits and separators allowed
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
			_, err := service.ParseAmount(fl.Field().String())
			return err == nil
		})
	})
}

package handlers

import (
	"errors"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/harentsoaR/healthref-api/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RegisterValidators adds the sixdigits and objectid tags to gin's
// binding validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	if err := v.RegisterValidation("sixdigits", func(fl validator.FieldLevel) bool {
		return utils.IsSixDigits(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return primitive.IsValidObjectID(fl.Field().String())
	})
}

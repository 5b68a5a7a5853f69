package utils

import (
	"regexp"
	"telehealth-service/internal/pkg/constvars"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate

	hhmmRegex     = regexp.MustCompile(constvars.RegexTimeHHMM)
	yyyymmddRegex = regexp.MustCompile(constvars.RegexDateYYYYMMDD)
	objectIDRegex = regexp.MustCompile(constvars.RegexObjectIDHex)
)

func init() {
	validate = validator.New()
	validate.RegisterValidation("hhmm", validateHHMM)
	validate.RegisterValidation("yyyymmdd", validateYYYYMMDD)
	validate.RegisterValidation("objectid", validateObjectID)
	validate.RegisterValidation("weekday", validateWeekday)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func IsValidHHMM(value string) bool {
	return hhmmRegex.MatchString(value)
}

func IsValidDate(value string) bool {
	if !yyyymmddRegex.MatchString(value) {
		return false
	}
	_, err := time.Parse(constvars.DateFormatYYYYMMDD, value)
	return err == nil
}

func IsValidObjectID(value string) bool {
	return objectIDRegex.MatchString(value)
}

func validateHHMM(fl validator.FieldLevel) bool {
	return IsValidHHMM(fl.Field().String())
}

func validateYYYYMMDD(fl validator.FieldLevel) bool {
	return IsValidDate(fl.Field().String())
}

func validateObjectID(fl validator.FieldLevel) bool {
	return IsValidObjectID(fl.Field().String())
}

func validateWeekday(fl validator.FieldLevel) bool {
	day := fl.Field().Int()
	return day >= 0 && day <= 6
}

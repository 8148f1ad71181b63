package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the global validator instance.
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ConfigError represents a validation error for a specific field.
type ConfigError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of config errors.
type ValidationErrors []ConfigError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// ValidateWithDetails performs validation and returns detailed errors.
func ValidateWithDetails(cfg *Config) error {
	var details ValidationErrors

	if err := validate.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range validationErrors {
				details = append(details, ConfigError{
					Field:   fe.Namespace(),
					Message: formatValidationError(fe),
					Value:   fe.Value(),
				})
			}
		} else {
			return err
		}
	}

	details = append(details, validateCrossFields(cfg)...)

	if len(details) > 0 {
		return details
	}
	return nil
}

// validateCrossFields enforces relationships the struct tags cannot express.
func validateCrossFields(cfg *Config) ValidationErrors {
	var errs ValidationErrors

	if sum := cfg.Retrieval.InternalWeight + cfg.Retrieval.ExternalWeight; math.Abs(sum-1.0) > 1e-9 {
		errs = append(errs, ConfigError{
			Field:   "Config.Retrieval",
			Message: "internal_weight and external_weight must sum to 1.0",
			Value:   sum,
		})
	}
	if cfg.Learning.MinWeight >= cfg.Learning.MaxWeight {
		errs = append(errs, ConfigError{
			Field:   "Config.Learning",
			Message: "min_weight must be less than max_weight",
			Value:   fmt.Sprintf("[%v, %v]", cfg.Learning.MinWeight, cfg.Learning.MaxWeight),
		})
	}
	if cfg.Learning.MinRate >= cfg.Learning.MaxRate {
		errs = append(errs, ConfigError{
			Field:   "Config.Learning",
			Message: "min_rate must be less than max_rate",
			Value:   fmt.Sprintf("[%v, %v]", cfg.Learning.MinRate, cfg.Learning.MaxRate),
		})
	}
	if cfg.Cache.SweepAge < cfg.Cache.MaxAge {
		errs = append(errs, ConfigError{
			Field:   "Config.Cache",
			Message: "sweep_age must not be shorter than max_age",
			Value:   cfg.Cache.SweepAge,
		})
	}

	return errs
}

// formatValidationError converts validator.FieldError to a human-readable message.
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}

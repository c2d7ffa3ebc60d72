package profile

import (
	"fmt"
	"reflect"
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Options is the resolved host profile. Zero values mean "no override":
// an empty Channel leaves the channel choice to the caller.
type Options struct {
	// Release channel override for the package repository
	Channel string `lua:"channel" validate:"omitempty,oneof=stable test"`

	// Additional packages installed alongside the engine
	ExtraPackages []string `lua:"extra_packages" validate:"omitempty,max=64,dive,package_name"`

	// Whether the shell fragment gets the docker aliases
	ShellAliases bool `lua:"aliases"`

	// Whether the invoking user is added to the docker group
	DockerGroup bool `lua:"docker_group"`
}

// DefaultOptions returns the options an absent or empty profile resolves to.
func DefaultOptions() Options {
	return Options{ShellAliases: true}
}

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	// Package names as the native managers accept them
	packageNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9+._-]*$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if name := fld.Tag.Get("lua"); name != "" {
				return name
			}
			return fld.Name
		})

		_ = v.RegisterValidation("package_name", func(fl validator.FieldLevel) bool {
			return packageNamePattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// Validate checks the options against the profile schema.
func (o *Options) Validate() error {
	v := validatorInstance()
	if err := v.Struct(o); err != nil {
		if ves, ok := err.(validator.ValidationErrors); ok && len(ves) > 0 {
			ve := ves[0]
			return &ValidationError{Field: ve.Field(), Message: messageFor(ve)}
		}
		return &ValidationError{Field: "profile", Message: err.Error()}
	}
	return nil
}

func messageFor(ve validator.FieldError) string {
	switch ve.Tag() {
	case "oneof":
		return fmt.Sprintf("invalid value %q (expected one of: %s)", ve.Value(), ve.Param())
	case "package_name":
		return fmt.Sprintf("invalid package name %q", ve.Value())
	case "max":
		return fmt.Sprintf("too many entries (limit %s)", ve.Param())
	default:
		return fmt.Sprintf("failed validation for tag %q", ve.Tag())
	}
}

// ValidationError represents a profile validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "profile validation failed for " + e.Field + ": " + e.Message
	}
	return "profile validation failed: " + e.Message
}

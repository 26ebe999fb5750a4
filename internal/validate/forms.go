package validate

import (
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"storefront/internal/domain"
)

var (
	structValidator *validator.Validate
	once            sync.Once
)

func instance() *validator.Validate {
	once.Do(func() {
		structValidator = validator.New()
		_ = structValidator.RegisterValidation("state", func(fl validator.FieldLevel) bool {
			return domain.ValidState(fl.Field().String())
		})
		_ = structValidator.RegisterValidation("zipcode", func(fl validator.FieldLevel) bool {
			n, err := strconv.Atoi(fl.Field().String())
			return err == nil && n >= 0
		})
		_ = structValidator.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return Password(fl.Field().String())
		})
	})
	return structValidator
}

// Struct validates s by its `validate` tags.
func Struct(s any) error {
	return instance().Struct(s)
}

// AddressForm is the shipping-profile form shared by /address and /buy.
type AddressForm struct {
	Name     string `form:"name" validate:"required,max=200"`
	Locality string `form:"locality" validate:"required,max=200"`
	City     string `form:"city" validate:"required,max=50"`
	Zipcode  string `form:"zipcode" validate:"required,zipcode,max=9"`
	State    string `form:"state" validate:"required,state"`
}

// Customer validates the form and converts it into an address owned by userID.
func (f AddressForm) Customer(userID int64) (domain.Customer, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Locality = strings.TrimSpace(f.Locality)
	f.City = strings.TrimSpace(f.City)
	f.Zipcode = strings.TrimSpace(f.Zipcode)
	if err := Struct(f); err != nil {
		return domain.Customer{}, err
	}
	zip, err := strconv.Atoi(f.Zipcode)
	if err != nil {
		return domain.Customer{}, err
	}
	return domain.Customer{
		UserID:   userID,
		Name:     f.Name,
		Locality: f.Locality,
		City:     f.City,
		Zipcode:  zip,
		State:    f.State,
	}, nil
}

// Filled reports whether any address field was submitted.
func (f AddressForm) Filled() bool {
	return strings.TrimSpace(f.Name+f.Locality+f.City+f.Zipcode+f.State) != ""
}

type RegistrationForm struct {
	Username  string `form:"username" validate:"required,alphanum,min=3,max=30"`
	Email     string `form:"email" validate:"required,email,max=50"`
	Password1 string `form:"password1" validate:"required,password"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
}

// FieldErrors flattens validator errors into field -> short message.
func FieldErrors(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		if err != nil {
			out["_"] = err.Error()
		}
		return out
	}
	for _, fe := range verrs {
		var msg string
		switch fe.Tag() {
		case "required":
			msg = "This field is required."
		case "zipcode":
			msg = "Enter a whole number."
		case "state":
			msg = "Select a valid state."
		case "email":
			msg = "Enter a valid email address."
		case "alphanum":
			msg = "Use letters and digits only."
		case "password":
			msg = "8-20 characters with upper, lower, digit and symbol."
		case "eqfield":
			msg = "The two password fields didn't match."
		default:
			msg = "Invalid value."
		}
		out[fe.Field()] = msg
	}
	return out
}

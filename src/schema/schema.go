// Package schema validates inbound requests against their struct tags.
//
// It wraps go-playground/validator with the formats used by the chain
// objects: numeric ids, hex encoded public keys and signatures.
package schema

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	idRegexp      = regexp.MustCompile(`^[0-9]{1,20}$`)
	addressRegexp = regexp.MustCompile(`^[0-9]{1,20}[L]$`)
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator with the custom formats registered.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterValidation("id", isID)
		validate.RegisterValidation("address", isAddress)
		validate.RegisterValidation("publicKey", hexOfLen(32))
		validate.RegisterValidation("signature", hexOfLen(64))
		validate.RegisterValidation("hexstr", isHex)
	})
	return validate
}

// Validate checks s against its validate tags. The returned error lists the
// offending fields.
func Validate(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

// IsID reports whether s is a numeric block or transaction id.
func IsID(s string) bool {
	return idRegexp.MatchString(s)
}

func isID(fl validator.FieldLevel) bool {
	return IsID(fl.Field().String())
}

func isAddress(fl validator.FieldLevel) bool {
	return addressRegexp.MatchString(fl.Field().String())
}

func isHex(fl validator.FieldLevel) bool {
	_, err := hex.DecodeString(fl.Field().String())
	return err == nil
}

func hexOfLen(n int) validator.Func {
	return func(fl validator.FieldLevel) bool {
		b, err := hex.DecodeString(fl.Field().String())
		return err == nil && len(b) == n
	}
}

package command

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
)

var ErrUnknownKind = errors.New("unknown command kind")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("chatid", func(fl validator.FieldLevel) bool {
		_, err := ParsePeer(ChatID(fl.Field().String()))
		return err == nil
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidationError reports a command payload that cannot be turned into a request.
// Such commands are dropped and never retried.
type ValidationError struct {
	Kind Kind
	Err  error
}

func (e *ValidationError) Error() string {
	var verrs validator.ValidationErrors
	if errors.As(e.Err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
		}
		return fmt.Sprintf("command %s: invalid fields: %s", e.Kind, strings.Join(fields, ", "))
	}
	return fmt.Sprintf("command %s: %v", e.Kind, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

type normalizer interface {
	normalize()
}

// Parse builds the request for kind from a raw JSON payload. Unknown fields,
// request_type included, are ignored.
func Parse(kind Kind, raw []byte) (Request, error) {
	ctor, ok := registry[kind]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownKind, "%q", string(kind))
	}
	r := ctor()
	if err := json.Unmarshal(raw, r); err != nil {
		return nil, &ValidationError{Kind: kind, Err: err}
	}
	if n, ok := r.(normalizer); ok {
		n.normalize()
	}
	if err := validate.Struct(r); err != nil {
		return nil, &ValidationError{Kind: kind, Err: err}
	}
	return r, nil
}

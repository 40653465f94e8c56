package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	kgerrors "github.com/matzehuels/kgview/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks c and reports every violation in one INVALID_CONFIG error.
func (c *Config) Validate() error {
	c.Cache.Redis.Enabled = c.Cache.Backend == "redis"
	if err := validate.Struct(c); err != nil {
		return kgerrors.Wrap(kgerrors.ErrCodeInvalidConfig, err, "%s", describe(err))
	}
	return nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", field, fe.Tag()))
		}
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

// internal/config/validator.go
//
// Startup gate for the configuration snapshot.
//
// Context
// -------
// `Validate` runs once, after Build and before any resource is acquired.  It
// collects every problem instead of stopping at the first one so an
// operator sees the complete list in a single diagnostic.  Two kinds of
// rule feed the list:
//
//   - presence rules that depend on the deployment mode (written out below),
//   - range rules declared as `validate:"…"` tags in model.go and checked
//     through go-playground/validator.
//
// The validator never re-resolves secrets.  A configured connection-string
// reference is trusted to have been attempted by the builder.
//
// Notes
// -----
//   - Oxford commas, two spaces after periods.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = validator.New()

//
// error type
//

// ValidationError lists every violated rule.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "missing required configuration: " + strings.Join(e.Problems, ", ")
}

//
// public API
//

// Validate returns nil or a *ValidationError.
func Validate(c *Config) error {
	var problems []string

	if c.IsProduction() && c.ProjectID == "" {
		problems = append(problems, "GOOGLE_CLOUD_PROJECT")
	}
	if c.Database.Host == "" {
		problems = append(problems, "DB_HOST")
	}
	if c.Database.User == "" {
		problems = append(problems, "DB_USER")
	}
	if c.Database.Password == "" && c.Secrets.ConnectionString == "" {
		problems = append(problems, "DB_PASSWORD or CONNECTION_STRING_SECRET_ID")
	}
	if c.IsProduction() && c.Auth.Secret == "" {
		problems = append(problems, "JWT_SECRET")
	}

	if err := v.Struct(c); err != nil {
		var fields validator.ValidationErrors
		if !errors.As(err, &fields) {
			problems = append(problems, err.Error())
		}
		for _, fe := range fields {
			problems = append(problems, describe(fe))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

// describe renders one tag failure as "<path> (<rule>)", e.g.
// "Config.Database.PoolMin (ltefield=PoolMax)".
func describe(fe validator.FieldError) string {
	rule := fe.Tag()
	if p := fe.Param(); p != "" {
		rule += "=" + p
	}
	return fmt.Sprintf("%s (%s)", fe.Namespace(), rule)
}

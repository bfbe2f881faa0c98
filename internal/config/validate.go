// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tombee/unrealrpc/internal/unrealircd"
	rpcerrors "github.com/tombee/unrealrpc/pkg/errors"
)

var getValidator = sync.OnceValue(func() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := validate.RegisterValidation("rpc_url", func(fl validator.FieldLevel) bool {
		return isRPCURL(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return validate
})

// isRPCURL reports whether host, after defaulting the scheme, is an
// absolute http or https URL.
func isRPCURL(host string) bool {
	u, err := url.Parse(unrealircd.NormalizeHost(host))
	if err != nil {
		return false
	}
	return (u.Scheme == "https" || u.Scheme == "http") && u.Host != ""
}

// Validate checks the configuration. The first problem is returned as a
// *errors.ConfigError keyed by its YAML path.
func (c *Config) Validate() error {
	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &rpcerrors.ConfigError{Reason: "configuration validation failed", Cause: err}
	}

	fe := verrs[0]
	return &rpcerrors.ConfigError{
		Key:    fieldKey(fe.Namespace()),
		Reason: describe(fe),
		Cause:  err,
	}
}

// fieldKey drops the struct name from a validator namespace,
// e.g. "Config.rate_limit.burst" becomes "rate_limit.burst".
func fieldKey(namespace string) string {
	_, key, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	return key
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "rpc_url":
		return fmt.Sprintf("must be an http or https URL, got %q", fe.Value())
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "gtefield":
		return "must not be less than initial_backoff"
	}
	return fmt.Sprintf("failed %q check", fe.Tag())
}

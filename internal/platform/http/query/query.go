// Package query binds optional query parameters with the oapi-codegen runtime binder.
package query

import (
	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
)

// OptionalInt binds ?name=N. It returns nil when the parameter is absent.
func OptionalInt(c *gin.Context, name string) (*int, error) {
	var v *int
	if err := runtime.BindQueryParameter("form", true, false, name, c.Request.URL.Query(), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// OptionalInts binds a comma separated list such as ?windows=5,20,60. It returns nil when absent.
func OptionalInts(c *gin.Context, name string) ([]int, error) {
	var v *[]int
	if err := runtime.BindQueryParameter("form", false, false, name, c.Request.URL.Query(), &v); err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return *v, nil
}

// OptionalBool binds ?name=true|false. It returns fallback when absent.
func OptionalBool(c *gin.Context, name string, fallback bool) (bool, error) {
	var v *bool
	if err := runtime.BindQueryParameter("form", true, false, name, c.Request.URL.Query(), &v); err != nil {
		return false, err
	}
	if v == nil {
		return fallback, nil
	}
	return *v, nil
}

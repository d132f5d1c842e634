package models

import (
	"encoding/json"
	"net/http"
	"strings"
)

type JSONErrors map[string]map[string]string

func (e JSONErrors) add(field, msg string) {
	e[field] = map[string]string{"error": msg}
}

func (e *Environment) Validate() JSONErrors {
	errors := JSONErrors{}

	if strings.TrimSpace(e.Name) == "" {
		errors.add("name", "required")
	}

	return errors
}

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

func (e *Endpoint) Validate() JSONErrors {
	errors := JSONErrors{}

	if !e.APIType.Valid() {
		errors.add("apiType", "invalid value.")
	}

	if !strings.HasPrefix(e.Path, "/") {
		errors.add("path", "must start with /")
	}

	e.Method = strings.ToUpper(strings.TrimSpace(e.Method))
	if !allowedMethods[e.Method] {
		errors.add("method", "invalid value.")
	}

	return errors
}

func (s *Scenario) Validate() JSONErrors {
	errors := JSONErrors{}

	if strings.TrimSpace(s.Name) == "" {
		errors.add("name", "required")
	}

	if !s.Type.Valid() {
		errors.add("type", "invalid value.")
	}

	if s.StatusCode < 100 || s.StatusCode > 599 {
		errors.add("statusCode", "must be a valid HTTP status.")
	}

	if s.DelayMs < 0 {
		errors.add("delayMs", "must not be negative.")
	}

	if len(s.ResponseData) == 0 {
		s.ResponseData = []byte("{}")
	} else if !json.Valid(s.ResponseData) {
		errors.add("responseData", "must be valid JSON.")
	}

	if len(s.RequestConditions) != 0 && !json.Valid(s.RequestConditions) {
		errors.add("requestConditions", "must be valid JSON.")
	}

	return errors
}

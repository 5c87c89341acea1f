// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

package validation

import (
	"errors"
	"strings"
	"testing"
	"time"
)

type innerConfig struct {
	URL     string        `koanf:"url" validate:"omitempty,endpoint"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
	Min     time.Duration `koanf:"min" validate:"gt=0"`
	Max     time.Duration `koanf:"max" validate:"gtefield=Min"`
}

type outerConfig struct {
	Inner innerConfig `koanf:"inner"`
	Level string      `koanf:"level" validate:"oneof=debug info warn"`
	Port  int         `koanf:"port" validate:"min=1,max=65535"`
}

func validOuter() outerConfig {
	return outerConfig{
		Inner: innerConfig{URL: "https://host/graphql", Timeout: time.Second, Min: time.Second, Max: time.Minute},
		Level: "info",
		Port:  8080,
	}
}

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	cfg := validOuter()
	if err := ValidateStruct(&cfg); err != nil {
		t.Errorf("expected valid, got %v", err)
	}

	cfg.Inner.URL = ""
	if err := ValidateStruct(&cfg); err != nil {
		t.Errorf("empty URL should be allowed with omitempty, got %v", err)
	}
}

func TestValidateStruct_FieldPaths(t *testing.T) {
	cfg := validOuter()
	cfg.Inner.URL = "ftp://host/x"
	cfg.Inner.Timeout = 0
	cfg.Port = 70000

	err := ValidateStruct(&cfg)
	var ve *Error
	if !errors.As(err, &ve) {
		t.Fatalf("expected *Error, got %T %v", err, err)
	}

	fields := map[string]string{}
	for _, fe := range ve.Errors() {
		fields[fe.Field()] = fe.Tag()
	}
	want := map[string]string{
		"inner.url":     "endpoint",
		"inner.timeout": "gt",
		"port":          "max",
	}
	for f, tag := range want {
		if fields[f] != tag {
			t.Errorf("field %s: expected tag %q, got %q (all: %v)", f, tag, fields[f], fields)
		}
	}
	if !strings.Contains(err.Error(), "inner.url must be an absolute http(s) or ws(s) URL") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestValidateStruct_OneOf(t *testing.T) {
	cfg := validOuter()
	cfg.Level = "loud"

	err := ValidateStruct(&cfg)
	if err == nil || !strings.Contains(err.Error(), "level must be one of: debug info warn") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestValidateStruct_LogLevel(t *testing.T) {
	type logging struct {
		Level string `koanf:"level" validate:"loglevel"`
	}
	tests := []struct {
		level string
		valid bool
	}{
		{"info", true},
		{"WARN", true},
		{"trace", true},
		{"verbose", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			err := ValidateStruct(&logging{Level: tt.level})
			if tt.valid && err != nil {
				t.Errorf("expected %q to be valid, got %v", tt.level, err)
			}
			if !tt.valid && (err == nil || !strings.Contains(err.Error(), "level must be a log level")) {
				t.Errorf("expected log level error for %q, got %v", tt.level, err)
			}
		})
	}
}

func TestValidateStruct_JSONTagFallback(t *testing.T) {
	type body struct {
		Query string `json:"query" validate:"required"`
		Plain string `validate:"required"`
	}

	err := ValidateStruct(&body{})
	if err == nil {
		t.Fatal("expected error")
	}
	var verr *Error
	if !errors.As(err, &verr) || len(verr.Errors()) != 2 {
		t.Fatalf("expected two field errors, got %v", err)
	}
	checkField(t, verr.Errors()[0].Field(), "query")
	checkField(t, verr.Errors()[1].Field(), "Plain")
	if !strings.Contains(err.Error(), "query is required") {
		t.Errorf("unexpected message %v", err)
	}
}

func checkField(t *testing.T, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("field = %q, want %q", got, want)
	}
}

func TestIsEndpointURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://host/graphql", true},
		{"http://host:8080/v1/graphql", true},
		{"wss://host/graphql", true},
		{"WS://host/graphql", true},
		{"ftp://host/graphql", false},
		{"/graphql", false},
		{"https://", false},
		{"::not a url", false},
	}
	for _, tt := range tests {
		if got := IsEndpointURL(tt.in); got != tt.want {
			t.Errorf("IsEndpointURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

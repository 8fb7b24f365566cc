package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/kbukum/routekit/errors"
)

func TestValidatorChecks(t *testing.T) {
	tests := []struct {
		name    string
		check   func(v *Validator)
		wantErr bool
	}{
		{"required ok", func(v *Validator) { v.Required("id", "hello") }, false},
		{"required empty", func(v *Validator) { v.Required("id", "") }, true},
		{"required blank", func(v *Validator) { v.Required("id", "   ") }, true},
		{"url ok", func(v *Validator) { v.URL("url", "https://jsonplaceholder.typicode.com/users/1") }, false},
		{"url empty is optional", func(v *Validator) { v.URL("url", "") }, false},
		{"url relative", func(v *Validator) { v.URL("url", "/users/1") }, true},
		{"url wrong scheme", func(v *Validator) { v.URL("url", "ftp://host/file") }, true},
		{"positive ok", func(v *Validator) { v.Positive("timeout", time.Second) }, false},
		{"positive zero", func(v *Validator) { v.Positive("timeout", 0) }, true},
		{"non-negative zero", func(v *Validator) { v.NonNegative("n", 0) }, false},
		{"non-negative below", func(v *Validator) { v.NonNegative("n", -1) }, true},
		{"one of ok", func(v *Validator) { v.OneOf("level", "info", []string{"debug", "info"}) }, false},
		{"one of miss", func(v *Validator) { v.OneOf("level", "loud", []string{"debug", "info"}) }, true},
		{"custom", func(v *Validator) { v.Custom(false, "x", "is wrong") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			tt.check(v)
			if v.HasErrors() != tt.wantErr {
				t.Errorf("HasErrors() = %v, want %v (%v)", v.HasErrors(), tt.wantErr, v.Errors())
			}
		})
	}
}

func TestValidatorErr(t *testing.T) {
	if err := New().Required("id", "x").Err(); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}

	err := New().Required("id", "").Positive("timeout", 0).Err()
	if err == nil {
		t.Fatal("expected error")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	if !strings.Contains(appErr.Message, "id: is required") || !strings.Contains(appErr.Message, "timeout: must be positive") {
		t.Errorf("unexpected message %q", appErr.Message)
	}
	fields, _ := appErr.Detail("fields")
	if got := len(fields.([]FieldError)); got != 2 {
		t.Errorf("expected 2 field errors, got %d", got)
	}
}

type logging struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}

type settings struct {
	Name        string   `mapstructure:"name" validate:"required,max=8"`
	MaxInFlight int64    `yaml:"max_in_flight" validate:"gte=0,lte=10"`
	BaseURL     string   `json:"base_url" validate:"omitempty,url"`
	Addr        string   `validate:"omitempty,hostname_port"`
	Logging     logging  `mapstructure:"logging"`
	Tags        []string `mapstructure:"tags" validate:"max=2"`
}

func TestValidate(t *testing.T) {
	valid := settings{Name: "craft", MaxInFlight: 4, BaseURL: "https://example.com", Addr: "localhost:8080"}
	if err := Validate(valid); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	tests := []struct {
		name  string
		mut   func(s *settings)
		field string
		msg   string
	}{
		{"required", func(s *settings) { s.Name = "" }, "name", "is required"},
		{"max string", func(s *settings) { s.Name = "much-too-long" }, "name", "at most 8 characters"},
		{"lte", func(s *settings) { s.MaxInFlight = 11 }, "max_in_flight", "less than or equal to 10"},
		{"gte", func(s *settings) { s.MaxInFlight = -1 }, "max_in_flight", "greater than or equal to 0"},
		{"url", func(s *settings) { s.BaseURL = "not a url" }, "base_url", "valid URL"},
		{"hostname_port", func(s *settings) { s.Addr = "nope" }, "addr", "host:port"},
		{"nested oneof", func(s *settings) { s.Logging.Level = "loud" }, "logging.level", "one of"},
		{"max items", func(s *settings) { s.Tags = []string{"a", "b", "c"} }, "tags", "at most 2 items"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mut(&s)
			err := Validate(s)
			if err == nil {
				t.Fatal("expected error")
			}
			appErr, _ := errors.AsAppError(err)
			fields, _ := appErr.Detail("fields")
			fe := fields.([]FieldError)
			if len(fe) != 1 || fe[0].Field != tt.field || !strings.Contains(fe[0].Message, tt.msg) {
				t.Errorf("unexpected field errors %+v", fe)
			}
		})
	}
}

func TestSnake(t *testing.T) {
	for in, want := range map[string]string{"Addr": "addr", "MaxInFlight": "max_in_flight", "id": "id"} {
		if got := snake(in); got != want {
			t.Errorf("snake(%q) = %q, want %q", in, got, want)
		}
	}
}

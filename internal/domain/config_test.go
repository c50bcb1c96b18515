package domain

import (
	"testing"
)

func TestQueueConfigValidate(t *testing.T) {
	base := QueueConfig{Name: "notes", Endpoint: "/api/notes"}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name string
		cfg  QueueConfig
	}{
		{"missing name", QueueConfig{Endpoint: "/api/notes"}},
		{"missing endpoint", QueueConfig{Name: "notes"}},
		{"bad method", QueueConfig{Name: "notes", Endpoint: "/api/notes", Method: "FETCH"}},
		{"negative retries", QueueConfig{Name: "notes", Endpoint: "/api/notes", MaxRetries: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestQueueConfigNormalized(t *testing.T) {
	norm := QueueConfig{Name: "notes", Endpoint: "/api/notes"}.Normalized()

	if norm.Method != MethodPost {
		t.Fatalf("default method = %q, want POST", norm.Method)
	}
	if norm.MaxRetries != 5 {
		t.Fatalf("default max retries = %d, want 5", norm.MaxRetries)
	}
	want := []int{200, 201, 204}
	if len(norm.SuccessStatuses) != len(want) {
		t.Fatalf("default success statuses = %v", norm.SuccessStatuses)
	}
	for i, s := range want {
		if norm.SuccessStatuses[i] != s {
			t.Fatalf("default success statuses = %v, want %v", norm.SuccessStatuses, want)
		}
	}
}

func TestQueueConfigNormalizedKeepsExplicit(t *testing.T) {
	norm := QueueConfig{
		Name:            "notes",
		Endpoint:        "/api/notes",
		Method:          MethodPut,
		SuccessStatuses: []int{200},
		MaxRetries:      2,
	}.Normalized()

	if norm.Method != MethodPut || norm.MaxRetries != 2 || len(norm.SuccessStatuses) != 1 {
		t.Fatalf("explicit values overwritten: %+v", norm)
	}
}

func TestQueueConfigAccepts(t *testing.T) {
	cfg := QueueConfig{Name: "notes", Endpoint: "/n", SuccessStatuses: []int{200, 299}}
	if !cfg.Accepts(200) || !cfg.Accepts(299) {
		t.Fatalf("expected configured statuses to be accepted")
	}
	if cfg.Accepts(201) {
		t.Fatalf("201 is outside the success set")
	}
}

func TestValidMethod(t *testing.T) {
	for _, m := range []string{MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete} {
		if !ValidMethod(m) {
			t.Fatalf("expected %s to be valid", m)
		}
	}
	if ValidMethod("post") {
		t.Fatalf("methods are case sensitive")
	}
	if ValidMethod("HEAD") {
		t.Fatalf("HEAD is not a delivery verb")
	}
}

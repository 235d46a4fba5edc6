package main

import (
	"testing"
)

func TestValidate(t *testing.T) {
	good := options{
		contactsPath: "plan.csv",
		src:          100,
		dst:          200,
		bundleBytes:  5e7,
		kConsume:     1,
		format:       "json",
	}
	if err := validate(&good); err != nil {
		t.Fatalf("valid options rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*options)
	}{
		{"missing contacts", func(o *options) { o.contactsPath = "" }},
		{"missing src", func(o *options) { o.src = -1 }},
		{"missing dst", func(o *options) { o.dst = -1 }},
		{"zero bytes", func(o *options) { o.bundleBytes = 0 }},
		{"negative t0", func(o *options) { o.t0 = -1 }},
		{"negative expiry", func(o *options) { o.expiry = -1 }},
		{"bad format", func(o *options) { o.format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := good
			tt.mutate(&opts)
			if err := validate(&opts); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateClampsKValues(t *testing.T) {
	opts := options{
		contactsPath: "plan.csv",
		src:          0,
		dst:          1,
		bundleBytes:  1,
		kConsume:     0,
		kYen:         -3,
		format:       "text",
	}
	if err := validate(&opts); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if opts.kConsume != 1 {
		t.Fatalf("kConsume = %d, want clamp to 1", opts.kConsume)
	}
	if opts.kYen != 0 {
		t.Fatalf("kYen = %d, want clamp to 0", opts.kYen)
	}
}

package idutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveID(t *testing.T) {
	cases := map[string]string{
		"Coordinator":      "coordinator",
		"Domain Expert":    "domain_expert",
		"  Backend  API  ": "backend_api",
		"C++/Rust!!":       "c_rust",
		"___already_id___": "already_id",
	}
	for name, want := range cases {
		assert.Equal(t, want, DeriveID(name), name)
	}
}

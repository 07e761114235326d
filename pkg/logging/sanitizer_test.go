package logging

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeConnectionString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{
			name:  "postgres url",
			input: "postgres://catalog:s3cret@db:5432/archcatalog?sslmode=disable",
			want:  "postgres://[REDACTED]@db:5432/archcatalog?sslmode=disable",
		},
		{
			name:  "redis url without user",
			input: "redis://:hunter2@cache:6379/0",
			want:  "redis://[REDACTED]@cache:6379/0",
		},
		{
			name:  "key value",
			input: "host=db user=catalog password=s3cret dbname=archcatalog",
			want:  "host=db user=catalog password=[REDACTED] dbname=archcatalog",
		},
		{
			name:  "no credentials",
			input: "postgres://db:5432/archcatalog",
			want:  "postgres://db:5432/archcatalog",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeConnectionString(tt.input))
		})
	}
}

func TestSanitizeError(t *testing.T) {
	assert.Empty(t, SanitizeError(nil))

	err := fmt.Errorf("failed to connect to postgres://catalog:s3cret@db/archcatalog: %w", errors.New("refused"))
	got := SanitizeError(err)

	assert.NotContains(t, got, "s3cret")
	assert.Contains(t, got, "refused")
}

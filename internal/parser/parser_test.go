package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateSuffix(t *testing.T) {
	assert.Equal(t, "171026", DateSuffix(time.Date(2026, 10, 17, 9, 0, 0, 0, time.Local)))
	assert.Equal(t, "010224", DateSuffix(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
}

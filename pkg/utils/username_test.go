package utils

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "alice", NormalizeUsername("  Alice "))
	assert.Equal(t, "jane.doe-1", NormalizeUsername("Jane.Doe-1"))
	assert.Equal(t, "al@x.com", NormalizeEmail(" AL@X.com"))
}

func TestAnyBlank(t *testing.T) {
	assert.False(t, AnyBlank("a", "b"))
	assert.True(t, AnyBlank("a", "   "))
	assert.True(t, AnyBlank(""))
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusConflict, StatusOf(Conflict("dup")))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(assert.AnError))
}

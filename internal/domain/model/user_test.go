package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_LandingPath(t *testing.T) {
	assert.Equal(t, "/admin", RoleAdmin.LandingPath())
	assert.Equal(t, "/worker", RoleWorker.LandingPath())
	assert.Equal(t, "/menu", RoleUser.LandingPath())
	assert.Equal(t, "/menu", Role("").LandingPath())
}

package serve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/furyracing/race-engine/pkg/config"
)

func TestServeCmd_requiresNats(t *testing.T) {
	config.NatsURL = ""
	cmd := NewServeCmd()
	cmd.SetArgs(nil)
	assert.ErrorIs(t, cmd.Execute(), ErrNoNats)
}

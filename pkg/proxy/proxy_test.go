package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bomberwire/pkg/protocol"
)

func TestTranslateInputSynthesizesJoinInLobby(t *testing.T) {
	p := &Proxy{name: "Casey", state: NewGameState()}
	msg := p.translateInput(protocol.MoveInput{Direction: protocol.DirUp})
	join, ok := msg.(protocol.JoinClient)
	assert.True(t, ok)
	assert.Equal(t, "Casey", join.Name)
}

func TestTranslateInputForwardsActionsInGame(t *testing.T) {
	p := &Proxy{name: "Casey", state: NewGameState()}
	p.state.Apply(protocol.GameStartedServer{Players: map[uint8]protocol.Player{0: {Name: "Casey"}}})

	assert.Equal(t, protocol.PlaceBombClient{}, p.translateInput(protocol.PlaceBombInput{}))
	assert.Equal(t, protocol.PlaceBlockClient{}, p.translateInput(protocol.PlaceBlockInput{}))
	assert.Equal(t, protocol.MoveClient{Direction: protocol.DirLeft}, p.translateInput(protocol.MoveInput{Direction: protocol.DirLeft}))
}

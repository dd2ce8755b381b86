package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelStore_RegisterSeedsDefault(t *testing.T) {
	assert := assert.New(t)

	cs := NewChannelStore()
	scoped := scopedChannel("ABCDEF", "monopolis:current_turn")

	value := cs.Register("conn-1", scoped, "default")
	assert.Equal("default", value)

	cached, exists := cs.Get(scoped)
	assert.True(exists)
	assert.Equal("default", cached)
}

func TestChannelStore_ReRegisterReturnsCachedValueUnchanged(t *testing.T) {
	assert := assert.New(t)

	cs := NewChannelStore()
	scoped := scopedChannel("ABCDEF", "monopolis:current_turn")

	cs.Register("conn-1", scoped, "first")
	value := cs.Register("conn-2", scoped, "second")

	assert.Equal("first", value, "later defaults must not overwrite the cache")
}

func TestChannelStore_SetReturnsSubscribers(t *testing.T) {
	assert := assert.New(t)

	cs := NewChannelStore()
	scoped := scopedChannel("ABCDEF", "monopolis:housing_market")

	cs.Register("conn-1", scoped, nil)
	cs.Register("conn-2", scoped, nil)

	subscribers := cs.Set(scoped, "updated")
	assert.ElementsMatch([]string{"conn-1", "conn-2"}, subscribers)

	value, _ := cs.Get(scoped)
	assert.Equal("updated", value)
}

func TestChannelStore_ScopesDoNotCollide(t *testing.T) {
	assert := assert.New(t)

	cs := NewChannelStore()
	first := scopedChannel("AAAAAA", "monopolis:current_turn")
	second := scopedChannel("BBBBBB", "monopolis:current_turn")

	cs.Register("conn-1", first, "lobby A")
	cs.Register("conn-2", second, "lobby B")

	valueA, _ := cs.Get(first)
	valueB, _ := cs.Get(second)
	assert.Equal("lobby A", valueA)
	assert.Equal("lobby B", valueB)

	assert.Empty(cs.Set(second, "only B"), "conn-1 is not subscribed to lobby B")
	assert.Len(cs.Set(second, "again"), 1)
}

func TestChannelStore_Unsubscribe(t *testing.T) {
	assert := assert.New(t)

	cs := NewChannelStore()
	scoped := scopedChannel(GlobalScope, LobbyListChannel)

	cs.Register("conn-1", scoped, nil)
	cs.Unsubscribe("conn-1", scoped)

	assert.Empty(cs.Set(scoped, "value"))
}

func TestChannelStore_UnsubscribeAll(t *testing.T) {
	assert := assert.New(t)

	cs := NewChannelStore()
	turn := scopedChannel("ABCDEF", "monopolis:current_turn")
	market := scopedChannel("ABCDEF", "monopolis:housing_market")

	cs.Register("conn-1", turn, nil)
	cs.Register("conn-1", market, nil)
	cs.Register("conn-2", turn, nil)

	cs.UnsubscribeAll("conn-1")

	assert.ElementsMatch([]string{"conn-2"}, cs.Set(turn, "value"))
	assert.Empty(cs.Set(market, "value"))
}

func TestChannelStore_SubscribeWithoutSeeding(t *testing.T) {
	assert := assert.New(t)

	cs := NewChannelStore()
	scoped := scopedChannel("ABCDEF", "monopolis:roll_order")

	_, exists := cs.Subscribe("conn-1", scoped)
	assert.False(exists)

	cs.Set(scoped, []int{0, 1})
	value, exists := cs.Subscribe("conn-2", scoped)
	assert.True(exists)
	assert.Equal([]int{0, 1}, value)
}

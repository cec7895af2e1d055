package discord

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type messagesCall struct {
	channelID, before, after, around string
	limit                            int
}

type fakeAPI struct {
	users    map[string]*discordgo.User
	dms      map[string]*discordgo.Channel
	channels map[string]*discordgo.Channel
	messages []*discordgo.Message

	listCalls []messagesCall
	deleted   []string
	closed    int
}

func (f *fakeAPI) User(userID string, _ ...discordgo.RequestOption) (*discordgo.User, error) {
	if u, ok := f.users[userID]; ok {
		return u, nil
	}
	return nil, errors.New("HTTP 404 Not Found")
}

func (f *fakeAPI) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if ch, ok := f.dms[recipientID]; ok {
		return ch, nil
	}
	return nil, errors.New("HTTP 403 Forbidden")
}

func (f *fakeAPI) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if ch, ok := f.channels[channelID]; ok {
		return ch, nil
	}
	return nil, errors.New("HTTP 404 Not Found")
}

func (f *fakeAPI) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	f.listCalls = append(f.listCalls, messagesCall{channelID, beforeID, afterID, aroundID, limit})
	return f.messages, nil
}

func (f *fakeAPI) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	f.deleted = append(f.deleted, channelID+"/"+messageID)
	return nil
}

func (f *fakeAPI) Close() error {
	f.closed++
	return nil
}

func connectorFor(api *fakeAPI) *Connector {
	return &Connector{newAPI: func(string) (restAPI, error) { return api, nil }}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		users: map[string]*discordgo.User{
			"@me": {ID: "100", Username: "self"},
			"200": {ID: "200", Username: "friend"},
		},
		dms: map[string]*discordgo.Channel{
			"200": {ID: "dm-200", Type: discordgo.ChannelTypeDM},
		},
		channels: map[string]*discordgo.Channel{
			"text":  {ID: "text", Type: discordgo.ChannelTypeGuildText},
			"voice": {ID: "voice", Type: discordgo.ChannelTypeGuildVoice},
		},
	}
}

func TestConnect(t *testing.T) {
	api := newFakeAPI()

	sess, err := connectorFor(api).Connect(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "100", sess.SelfID())

	require.NoError(t, sess.Close())
	assert.Equal(t, 1, api.closed)
}

// TestConnect_InvalidToken @me が取れなければ認証失敗、セッションは閉じる
func TestConnect_InvalidToken(t *testing.T) {
	api := newFakeAPI()
	delete(api.users, "@me")

	_, err := connectorFor(api).Connect(context.Background(), "bad")
	assert.Error(t, err)
	assert.Equal(t, 1, api.closed)
}

func TestConnect_NewFails(t *testing.T) {
	c := &Connector{newAPI: func(string) (restAPI, error) { return nil, errors.New("boom") }}

	_, err := c.Connect(context.Background(), "token")
	assert.Error(t, err)
}

func TestSession_DirectConversation(t *testing.T) {
	api := newFakeAPI()
	sess, err := connectorFor(api).Connect(context.Background(), "token")
	require.NoError(t, err)

	conv, err := sess.DirectConversation(context.Background(), "200")
	require.NoError(t, err)
	assert.True(t, conv.IsText())

	_, err = sess.DirectConversation(context.Background(), "text")
	assert.Error(t, err)
}

func TestSession_Conversation(t *testing.T) {
	api := newFakeAPI()
	sess, err := connectorFor(api).Connect(context.Background(), "token")
	require.NoError(t, err)

	conv, err := sess.Conversation(context.Background(), "text")
	require.NoError(t, err)
	assert.True(t, conv.IsText())

	conv, err = sess.Conversation(context.Background(), "voice")
	require.NoError(t, err)
	assert.False(t, conv.IsText())

	_, err = sess.Conversation(context.Background(), "missing")
	assert.Error(t, err)
}

func TestConversation_MessagesAndDelete(t *testing.T) {
	api := newFakeAPI()
	api.messages = []*discordgo.Message{
		{ID: "3", Content: "c", Author: &discordgo.User{ID: "100"}},
		{ID: "2", Content: "b", Author: &discordgo.User{ID: "200"}},
		{ID: "1", Content: "a"},
	}
	sess, err := connectorFor(api).Connect(context.Background(), "token")
	require.NoError(t, err)
	conv, err := sess.Conversation(context.Background(), "text")
	require.NoError(t, err)

	msgs, err := conv.Messages(context.Background(), 100, "", "9")
	require.NoError(t, err)

	require.Len(t, msgs, 3)
	assert.Equal(t, "3", msgs[0].ID)
	assert.Equal(t, "100", msgs[0].AuthorID)
	assert.Equal(t, "c", msgs[0].Content)
	assert.Empty(t, msgs[2].AuthorID)
	assert.Equal(t, []messagesCall{{channelID: "text", after: "9", limit: 100}}, api.listCalls)

	require.NoError(t, conv.Delete(context.Background(), "3"))
	assert.Equal(t, []string{"text/3"}, api.deleted)
}

func TestIsTextChannel(t *testing.T) {
	text := []discordgo.ChannelType{
		discordgo.ChannelTypeGuildText,
		discordgo.ChannelTypeDM,
		discordgo.ChannelTypeGroupDM,
		discordgo.ChannelTypeGuildNews,
		discordgo.ChannelTypeGuildPublicThread,
	}
	for _, ct := range text {
		assert.True(t, isTextChannel(ct), "type %d", ct)
	}
	for _, ct := range []discordgo.ChannelType{discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildCategory} {
		assert.False(t, isTextChannel(ct), "type %d", ct)
	}
}

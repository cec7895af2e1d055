// Package discord adapts a discordgo REST session to the cleaner interfaces.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rusq/dlog"

	"discordclear/internal/cleaner"
)

// restAPI is the subset of *discordgo.Session used here.
type restAPI interface {
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	Close() error
}

// Connector opens discordgo sessions for account tokens.
type Connector struct {
	newAPI func(token string) (restAPI, error)
}

// NewConnector returns a Connector backed by discordgo.
func NewConnector() *Connector {
	return &Connector{
		newAPI: func(token string) (restAPI, error) {
			return discordgo.New(token)
		},
	}
}

// Connect creates a session for token and verifies it by fetching the
// authenticated account.
func (c *Connector) Connect(ctx context.Context, token string) (cleaner.Session, error) {
	api, err := c.newAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	me, err := api.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		_ = api.Close()
		return nil, fmt.Errorf("fetch current user: %w", err)
	}
	dlog.Debugf("[discord] logged in as %s (%s)", me.Username, me.ID)
	return &Session{api: api, self: me}, nil
}

// Session is an authenticated discordgo session.
type Session struct {
	api  restAPI
	self *discordgo.User
}

// SelfID returns the id of the logged in account.
func (s *Session) SelfID() string { return s.self.ID }

// DirectConversation resolves userID and opens the DM channel with them.
func (s *Session) DirectConversation(ctx context.Context, userID string) (cleaner.Conversation, error) {
	user, err := s.api.User(userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch user %s: %w", userID, err)
	}
	ch, err := s.api.UserChannelCreate(user.ID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("create dm with %s: %w", userID, err)
	}
	return &Conversation{api: s.api, ch: ch}, nil
}

// Conversation resolves a channel by id.
func (s *Session) Conversation(ctx context.Context, channelID string) (cleaner.Conversation, error) {
	ch, err := s.api.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch channel %s: %w", channelID, err)
	}
	return &Conversation{api: s.api, ch: ch}, nil
}

// Close tears the session down.
func (s *Session) Close() error {
	return s.api.Close()
}

// Conversation is a resolved Discord channel.
type Conversation struct {
	api restAPI
	ch  *discordgo.Channel
}

// IsText reports whether the channel type carries text messages.
func (c *Conversation) IsText() bool {
	return isTextChannel(c.ch.Type)
}

func isTextChannel(t discordgo.ChannelType) bool {
	switch t {
	case discordgo.ChannelTypeGuildText,
		discordgo.ChannelTypeDM,
		discordgo.ChannelTypeGroupDM,
		discordgo.ChannelTypeGuildNews,
		discordgo.ChannelTypeGuildNewsThread,
		discordgo.ChannelTypeGuildPublicThread,
		discordgo.ChannelTypeGuildPrivateThread:
		return true
	default:
		return false
	}
}

// Messages lists up to limit messages, newest first.
func (c *Conversation) Messages(ctx context.Context, limit int, before, after string) ([]cleaner.Message, error) {
	msgs, err := c.api.ChannelMessages(c.ch.ID, limit, before, after, "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	out := make([]cleaner.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessage(m))
	}
	return out, nil
}

// Delete deletes messageID from the channel.
func (c *Conversation) Delete(ctx context.Context, messageID string) error {
	return c.api.ChannelMessageDelete(c.ch.ID, messageID, discordgo.WithContext(ctx))
}

func toMessage(m *discordgo.Message) cleaner.Message {
	msg := cleaner.Message{ID: m.ID, Content: m.Content}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
	}
	return msg
}

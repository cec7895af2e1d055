// Package cleaner deletes the messages of one conversation page by page and
// reports every deletion to a Publisher.
package cleaner

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rusq/dlog"

	"discordclear/internal/model"
)

// PageSize is the number of messages requested per fetch.
const PageSize = 100

// Notification lines pushed to the subscriber.
const (
	msgDeleted       = "Mensagem apagada: %s"
	msgSummary       = "%d mensagens apagadas com sucesso!"
	msgInvalidTarget = "[x] Canal ou usuário inválido."
	msgAuthFailed    = "[x] Token inválido."
	msgFailed        = "[x] Erro ao apagar mensagens."
)

var (
	// ErrAuthentication means the token could not establish a session.
	ErrAuthentication = errors.New("authentication failed")
	// ErrInvalidTarget means the id is neither a user nor a text channel.
	ErrInvalidTarget = errors.New("invalid channel or user")
	// ErrOperation means listing or deleting failed after resolution.
	ErrOperation = errors.New("failed to delete messages")
)

// Message is a single message of a conversation.
type Message struct {
	ID       string
	AuthorID string
	Content  string
}

// Conversation is a resolved channel against which messages are listed and
// deleted.
type Conversation interface {
	// IsText reports whether the conversation carries text messages.
	IsText() bool
	// Messages returns up to limit messages, newest first. At most one of
	// before and after is set; both empty returns the most recent messages.
	Messages(ctx context.Context, limit int, before, after string) ([]Message, error)
	// Delete deletes one message.
	Delete(ctx context.Context, messageID string) error
}

// Session is an authenticated connection to the chat provider.
type Session interface {
	// SelfID is the id of the authenticated account.
	SelfID() string
	// DirectConversation opens (or creates) the DM with userID.
	DirectConversation(ctx context.Context, userID string) (Conversation, error)
	// Conversation resolves a channel by id.
	Conversation(ctx context.Context, channelID string) (Conversation, error)
	Close() error
}

// Connector establishes sessions from a token.
type Connector interface {
	Connect(ctx context.Context, token string) (Session, error)
}

// Publisher receives progress lines.
type Publisher interface {
	Publish(text string)
}

// Options controls one run.
type Options struct {
	Limit            model.Limit
	DirectionTopDown bool
	OnlyUserMessages bool
}

// DefaultOptions returns unbounded, top-down, own-messages-only options.
func DefaultOptions() Options {
	return Options{
		Limit:            model.Unbounded(),
		DirectionTopDown: true,
		OnlyUserMessages: true,
	}
}

// Result is the outcome of a successful run.
type Result struct {
	Deleted int
	Pages   int
}

// Cleaner runs deletions. It keeps no state between runs; concurrent calls
// share only the Publisher.
type Cleaner struct {
	connector Connector
	pub       Publisher
}

// New returns a Cleaner using connector for sessions and pub for progress.
func New(connector Connector, pub Publisher) *Cleaner {
	return &Cleaner{connector: connector, pub: pub}
}

// Clear deletes messages from the conversation named by target.
//
// Errors wrap one of ErrAuthentication, ErrInvalidTarget or ErrOperation.
func (c *Cleaner) Clear(ctx context.Context, token, target string, opts Options) (Result, error) {
	runID := uuid.New().String()
	dlog.Printf("[clear %s] start: target=%s limit=%s topDown=%t onlyUser=%t",
		runID, target, opts.Limit, opts.DirectionTopDown, opts.OnlyUserMessages)

	// 空の値ではプロバイダに接続しない
	if token == "" {
		dlog.Printf("[clear %s] ❌ empty token", runID)
		c.pub.Publish(msgAuthFailed)
		return Result{}, fmt.Errorf("%w: empty token", ErrAuthentication)
	}
	if target == "" {
		dlog.Printf("[clear %s] ❌ empty target", runID)
		c.pub.Publish(msgInvalidTarget)
		return Result{}, fmt.Errorf("%w: empty target", ErrInvalidTarget)
	}

	sess, err := c.connector.Connect(ctx, token)
	if err != nil {
		dlog.Printf("[clear %s] ❌ login failed: %v", runID, err)
		c.pub.Publish(msgAuthFailed)
		return Result{}, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			dlog.Printf("[clear %s] ⚠️  session close: %v", runID, err)
		}
	}()

	conv, err := resolve(ctx, sess, target)
	if err != nil {
		dlog.Printf("[clear %s] ❌ %v", runID, err)
		c.pub.Publish(msgInvalidTarget)
		return Result{}, err
	}

	res, err := c.run(ctx, runID, sess.SelfID(), conv, opts)
	if err != nil {
		dlog.Printf("[clear %s] ❌ deleted %d before failure: %v", runID, res.Deleted, err)
		c.pub.Publish(msgFailed)
		return res, fmt.Errorf("%w: %w", ErrOperation, err)
	}

	c.pub.Publish(fmt.Sprintf(msgSummary, res.Deleted))
	dlog.Printf("[clear %s] ✅ deleted %d messages in %d pages", runID, res.Deleted, res.Pages)
	return res, nil
}

// resolve tries target as a user first and as a channel only if that fails.
func resolve(ctx context.Context, sess Session, target string) (Conversation, error) {
	conv, err := sess.DirectConversation(ctx, target)
	if err != nil {
		dlog.Debugf("not a user %s: %v", target, err)
		conv, err = sess.Conversation(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidTarget, err)
		}
	}
	if conv == nil || !conv.IsText() {
		return nil, ErrInvalidTarget
	}
	return conv, nil
}

func (c *Cleaner) run(ctx context.Context, runID, selfID string, conv Conversation, opts Options) (Result, error) {
	var (
		res    Result
		cursor string
	)
	for {
		var before, after string
		if cursor != "" {
			if opts.DirectionTopDown {
				after = cursor
			} else {
				before = cursor
			}
		}

		page, err := conv.Messages(ctx, PageSize, before, after)
		if err != nil {
			return res, fmt.Errorf("list messages: %w", err)
		}
		res.Pages++
		dlog.Debugf("[clear %s] page %d: %d messages (before=%q after=%q)", runID, res.Pages, len(page), before, after)
		if len(page) == 0 {
			return res, nil
		}

		for _, msg := range page {
			if opts.Limit.Reached(res.Deleted) {
				break
			}
			if opts.OnlyUserMessages && msg.AuthorID != selfID {
				continue
			}
			if err := conv.Delete(ctx, msg.ID); err != nil {
				return res, fmt.Errorf("delete message %s: %w", msg.ID, err)
			}
			res.Deleted++
			c.pub.Publish(fmt.Sprintf(msgDeleted, msg.Content))
		}

		// ページ全体の端を次のカーソルにする（削除対象だけではない）
		if opts.DirectionTopDown {
			cursor = page[0].ID
		} else {
			cursor = page[len(page)-1].ID
		}

		if opts.Limit.Reached(res.Deleted) || len(page) < PageSize {
			return res, nil
		}
	}
}

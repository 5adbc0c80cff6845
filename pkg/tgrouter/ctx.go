package tgrouter

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tgpay/pkg/tgrouter/callback"
	"tgpay/pkg/tgrouter/interfaces"
)

type Ctx struct {
	update  *tgbotapi.Update
	bot     *tgbotapi.BotAPI
	state   *string
	stateDB interfaces.State
	Context context.Context
}

func (c *Ctx) reset() {
	c.state = nil
	c.Context = context.Background()
}

func (c *Ctx) Bot() *tgbotapi.BotAPI {
	return c.bot
}

func (c *Ctx) Update() *tgbotapi.Update {
	return c.update
}

func (c *Ctx) UserID() int64 {
	if u := c.update.SentFrom(); u != nil {
		return u.ID
	}
	return 0
}

func (c *Ctx) ChatID() int64 {
	if chat := c.update.FromChat(); chat != nil {
		return chat.ID
	}
	return c.UserID()
}

// FirstName of the sender, empty for channel posts.
func (c *Ctx) FirstName() string {
	if u := c.update.SentFrom(); u != nil {
		return u.FirstName
	}
	return ""
}

func (c *Ctx) Username() string {
	if u := c.update.SentFrom(); u != nil {
		return u.UserName
	}
	return ""
}

func (c *Ctx) Text() string {
	if c.update.Message == nil {
		return ""
	}
	return strings.TrimSpace(c.update.Message.Text)
}

// Args are the whitespace separated command arguments.
func (c *Ctx) Args() []string {
	if c.update.Message == nil || !c.update.Message.IsCommand() {
		return nil
	}
	return strings.Fields(c.update.Message.CommandArguments())
}

func (c *Ctx) CallbackValue() string {
	if c.update.CallbackQuery == nil {
		return ""
	}
	return callback.Value(c.update.CallbackQuery.Data)
}

func (c *Ctx) SetState(state string) {
	c.state = &state
}

// State is the conversation kind of the sender, loaded once per update.
func (c *Ctx) State() string {
	if c.state == nil {
		kind, err := c.stateDB.Kind(c.Context, c.UserID())
		if err != nil {
			return ""
		}
		c.SetState(kind)
	}
	return *c.state
}

func (c *Ctx) ClearState() error {
	c.SetState("")
	return c.stateDB.Delete(c.Context, c.UserID())
}

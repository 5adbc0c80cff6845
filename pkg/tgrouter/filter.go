package tgrouter

import (
	"tgpay/pkg/tgrouter/callback"
)

type FilterType interface {
	MessageFilter | CommandFilter | StateFilter | CallbackFilter | any
}

type (
	MessageFilter  struct{}
	CommandFilter  struct{}
	StateFilter    struct{}
	CallbackFilter struct{}
)

type Filter[F FilterType] func(*Ctx) bool

// Message matches plain text that is not a command.
func Message() Filter[MessageFilter] {
	return func(c *Ctx) bool {
		return c.update.Message != nil && !c.update.Message.IsCommand() && c.update.Message.Text != ""
	}
}

func Command() Filter[CommandFilter] {
	return func(c *Ctx) bool {
		return c.update.Message != nil && c.update.Message.IsCommand()
	}
}

func Cmd(cmd string) Filter[CommandFilter] {
	return func(c *Ctx) bool {
		return c.update.Message != nil && c.update.Message.IsCommand() && c.update.Message.Command() == cmd
	}
}

func Callback(query string) Filter[CallbackFilter] {
	return func(c *Ctx) bool {
		if c.update.CallbackQuery == nil {
			return false
		}
		return callback.Query(c.update.CallbackQuery.Data) == query
	}
}

// State matches plain text sent while the user is in the named conversation.
func State(name string) Filter[StateFilter] {
	return func(c *Ctx) bool {
		if c.update.Message == nil || c.update.Message.IsCommand() {
			return false
		}
		return c.State() == name
	}
}

func Any() Filter[any] {
	return func(c *Ctx) bool {
		return true
	}
}

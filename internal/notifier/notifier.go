package notifier

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/skip2/go-qrcode"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tgpay/internal/keyboards"
	"tgpay/internal/structs"
	"tgpay/internal/texts"
	"tgpay/pkg/logger"
	"tgpay/pkg/utils"
)

var Module = fx.Provide(New)

const (
	sendTimeout = 10 * time.Second
	qrSize      = 256
)

// Sender is the part of *tgbotapi.BotAPI the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Notifier interface {
	Send(ctx context.Context, chatID int64, text string) error
	SendKeyboard(ctx context.Context, chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) error
	// SendCheckout sends text with a checkout button, then the same link as a QR code.
	SendCheckout(ctx context.Context, chatID int64, text, checkoutURL string) error
	// Reply delivers a flow reply, choosing checkout, choices or plain text.
	Reply(ctx context.Context, chatID int64, r structs.Reply) error
	// NotifyStatus tells the session owner about a terminal status.
	NotifyStatus(ctx context.Context, session structs.PaymentSession) error
	// AnswerCallback stops the loading indicator of an inline button.
	AnswerCallback(ctx context.Context, callbackID string) error
}

type Params struct {
	fx.In
	Logger logger.Logger
	Bot    *tgbotapi.BotAPI
}

type notifier struct {
	logger  logger.Logger
	sender  Sender
	timeout time.Duration
}

func New(p Params) Notifier {
	return newNotifier(p.Bot, p.Logger, sendTimeout)
}

func newNotifier(sender Sender, log logger.Logger, timeout time.Duration) *notifier {
	return &notifier{logger: log, sender: sender, timeout: timeout}
}

// send bounds a single Bot API call. The call underneath is bounded by the bot's http client, so
// a send given up on here may still be delivered later but does not hang.
func (n *notifier) send(ctx context.Context, c tgbotapi.Chattable) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		_, err := n.sender.Send(c)
		errCh <- err
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("telegram send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("telegram send: %w", ctx.Err())
	}
}

func (n *notifier) AnswerCallback(ctx context.Context, callbackID string) error {
	if callbackID == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		// answerCallbackQuery returns true, not a Message, so it goes through Request
		_, err := n.sender.Request(tgbotapi.NewCallback(callbackID, ""))
		errCh <- err
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("telegram answer callback: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("telegram answer callback: %w", ctx.Err())
	}
}

func (n *notifier) Send(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	return n.send(ctx, msg)
}

func (n *notifier) SendKeyboard(ctx context.Context, chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if len(kb.InlineKeyboard) > 0 {
		msg.ReplyMarkup = kb
	}
	return n.send(ctx, msg)
}

func (n *notifier) SendCheckout(ctx context.Context, chatID int64, text, checkoutURL string) error {
	if err := n.SendKeyboard(ctx, chatID, text, keyboards.CheckoutKeyboard(checkoutURL)); err != nil {
		return err
	}

	png, err := qrcode.Encode(checkoutURL, qrcode.Medium, qrSize)
	if err != nil {
		n.logger.Warn(ctx, "->qrcode.Encode", zap.Error(err))
		return nil
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "checkout.png", Bytes: png})
	photo.Caption = texts.Get(texts.CheckoutQRCaption)
	if err = n.send(ctx, photo); err != nil {
		// the link already went out, the QR code is a convenience
		n.logger.Warn(ctx, "failed to send checkout qr", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	return nil
}

func (n *notifier) Reply(ctx context.Context, chatID int64, r structs.Reply) error {
	switch {
	case r.CheckoutURL != "":
		return n.SendCheckout(ctx, chatID, r.Text, r.CheckoutURL)
	case len(r.Choices) > 0:
		return n.SendKeyboard(ctx, chatID, r.Text, keyboards.ChoicesKeyboard(r.Choices))
	default:
		return n.Send(ctx, chatID, r.Text)
	}
}

var statusTexts = map[structs.PaymentStatus]texts.TextKey{
	structs.StatusCompleted: texts.NotifyCompleted,
	structs.StatusCancelled: texts.NotifyCancelled,
	structs.StatusFailed:    texts.NotifyFailed,
}

func (n *notifier) NotifyStatus(ctx context.Context, session structs.PaymentSession) error {
	key, ok := statusTexts[session.Status]
	if !ok {
		return nil
	}
	text := texts.Format(key, session.OrderNumber, utils.FAmount(session.Amount, session.Currency))
	if err := n.Send(ctx, session.ChatID, text); err != nil {
		return err
	}
	n.logger.Info(ctx, "status notification sent", zap.String("order_number", session.OrderNumber), zap.String("status", string(session.Status)))
	return nil
}

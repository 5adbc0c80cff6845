package keyboards

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tgpay/internal/structs"
	"tgpay/internal/texts"
	"tgpay/pkg/tgrouter/callback"
)

const (
	BuyQuery    = "buy"
	ChoiceQuery = "choice"
)

var CheckoutKeyboard = func(url string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(texts.Get(texts.CheckoutButton), url),
		),
	)
}

// ProductsKeyboard has one Buy button per product.
var ProductsKeyboard = func(products []structs.Product) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(products))
	for _, p := range products {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(texts.Format(texts.BuyButton, p.Title), callback.New(BuyQuery, p.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// ChoicesKeyboard lays the choices out two per row.
var ChoicesKeyboard = func(choices []string) tgbotapi.InlineKeyboardMarkup {
	var (
		rows [][]tgbotapi.InlineKeyboardButton
		row  []tgbotapi.InlineKeyboardButton
	)
	for _, choice := range choices {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(choice, callback.New(ChoiceQuery, choice)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

package callback

import "html/template"

type page struct {
	Title       string
	Icon        string
	Heading     string
	Message     string
	OrderNumber string
	Amount      string
}

var pageTpl = template.Must(template.New("payment_page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body{font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Roboto,sans-serif;background:#f4f6f8;margin:0;display:flex;align-items:center;justify-content:center;min-height:100vh}
.card{background:#fff;border-radius:12px;box-shadow:0 2px 12px rgba(0,0,0,.08);padding:32px;max-width:420px;text-align:center}
.icon{font-size:48px}
.order{color:#666;font-size:14px;margin-top:16px}
</style>
</head>
<body>
<div class="card">
<div class="icon">{{.Icon}}</div>
<h1>{{.Heading}}</h1>
<p>{{.Message}}</p>
{{if .OrderNumber}}<p class="order">Order: {{.OrderNumber}}{{if .Amount}} &middot; {{.Amount}}{{end}}</p>{{end}}
<p>You can close this window and return to Telegram.</p>
</div>
</body>
</html>
`))

var (
	completedPage = page{
		Title:   "Payment Successful",
		Icon:    "✅",
		Heading: "Payment Successful",
		Message: "Thank you! Your payment has been received. The bot will send you a confirmation.",
	}
	cancelledPage = page{
		Title:   "Payment Cancelled",
		Icon:    "🚫",
		Heading: "Payment Cancelled",
		Message: "Your payment was cancelled. You can start a new one from the bot at any time.",
	}
	failedPage = page{
		Title:   "Payment Failed",
		Icon:    "❌",
		Heading: "Payment Failed",
		Message: "Your payment could not be completed. Please try again from the bot.",
	}
	pendingPage = page{
		Title:   "Payment Processing",
		Icon:    "⏳",
		Heading: "Payment Processing",
		Message: "Your payment is being processed. Use /status in the bot to check on it.",
	}
	unknownPage = page{
		Title:   "Payment Status Unknown",
		Icon:    "❓",
		Heading: "Payment Status Unknown",
		Message: "We could not find this payment. If you were charged, please contact support.",
	}
)

package tgrouter

type Middleware func(Handler) Handler

func assert1(guard bool, text string) {
	if !guard {
		panic(text)
	}
}

package structs

// Reply is what a conversation step answers with. The bot layer turns it into telegram messages.
type Reply struct {
	Text        string
	CheckoutURL string
	// Choices are offered as inline buttons; pressing one is the same as typing it.
	Choices []string
}

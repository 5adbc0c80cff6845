package callback

import (
	"fmt"
)

type CallbackData struct {
	Query string `json:"query"`
	Value string `json:"value"`
}

func (cd CallbackData) String() string {
	return fmt.Sprintf(`query:%s , value:%s`, cd.Query, cd.Value)
}

// New encodes callback data. Neither part may contain spaces; telegram caps the result at 64 bytes.
func New(query, value string) string {
	return CallbackData{Query: query, Value: value}.String()
}

func parse(data string) (CallbackData, bool) {
	var cd CallbackData
	if _, err := fmt.Sscanf(data, `query:%s , value:%s`, &cd.Query, &cd.Value); err != nil {
		return CallbackData{}, false
	}
	return cd, true
}

func Query(data string) string {
	cd, _ := parse(data)
	return cd.Query
}

func Value(data string) string {
	cd, _ := parse(data)
	return cd.Value
}

package models

// Chat roles stored in session history
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is a single utterance in a conversation
type ChatTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// WeatherReport is the current weather for a Bolivian city
type WeatherReport struct {
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
	Icon        string  `json:"icon"`
	City        string  `json:"city"`
}

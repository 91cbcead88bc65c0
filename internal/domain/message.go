package domain

// Message is a chat line as stored in the room log and delivered to members.
type Message struct {
	ID          string `json:"id"`
	UserID      UserID `json:"userId"`
	DisplayName string `json:"displayName"`
	Text        string `json:"text"`
	TimestampMs int64  `json:"timestampMs"`
}

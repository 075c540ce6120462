package model

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

type Message struct {
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
	Time   string `json:"time"`
}

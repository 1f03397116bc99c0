package presenter

import (
	"encoding/base64"
	"strings"
)

// Presenter delivers report text and chart images without coupling to the command layer.
type Presenter struct {
	sendMessage func(room, message string) error
	sendImage   func(room, imageBase64 string) error
}

func NewPresenter(sendMessage func(room, message string) error, sendImage func(room, imageBase64 string) error) *Presenter {
	return &Presenter{
		sendMessage: sendMessage,
		sendImage:   sendImage,
	}
}

func (p *Presenter) Text(room, message string) error {
	if p == nil || p.sendMessage == nil || strings.TrimSpace(message) == "" {
		return nil
	}
	return p.sendMessage(room, message)
}

// Report sends the text first and then the chart, when there is one.
func (p *Presenter) Report(room, message string, chartPNG []byte) error {
	if p == nil {
		return nil
	}
	if err := p.Text(room, message); err != nil {
		return err
	}
	if len(chartPNG) > 0 && p.sendImage != nil {
		encoded := base64.StdEncoding.EncodeToString(chartPNG)
		if err := p.sendImage(room, encoded); err != nil {
			return err
		}
	}
	return nil
}

package utils

import (
	"encoding/base64"
	"fmt"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/dto/requests"
)

func BuildNotificationEmailPayload(fromEmail, toEmail, recipientName, title, message string) *requests.EmailPayload {
	htmlCode := fmt.Sprintf(constvars.EmailNotificationHTMLFormat, recipientName, title, message)
	encoded := base64.StdEncoding.EncodeToString([]byte(htmlCode))

	return &requests.EmailPayload{
		Subject:  title,
		From:     fromEmail,
		To:       []string{toEmail},
		Cc:       []string{},
		Bcc:      []string{},
		HTMLCode: encoded,
		Encoded:  true,
	}
}

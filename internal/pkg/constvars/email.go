package constvars

const (
	EmailNotificationHTMLFormat = `<html><body><p>Hello %s,</p><h3>%s</h3><p>%s</p><p>Telehealth Team</p></body></html>`
)

package constvars

const (
	PayPalEventOrderApproved   = "CHECKOUT.ORDER.APPROVED"
	PayPalEventCaptureComplete = "PAYMENT.CAPTURE.COMPLETED"
	PayPalEventCaptureDenied   = "PAYMENT.CAPTURE.DENIED"
	PayPalEventCaptureDeclined = "PAYMENT.CAPTURE.DECLINED"
	PayPalEventCaptureRefunded = "PAYMENT.CAPTURE.REFUNDED"
)

const (
	PayPalCaptureStatusCompleted = "COMPLETED"
	PayPalRefundStatusFailed     = "FAILED"
)

const (
	ArchiveCaptureObjectFormat = "payments/%s/capture-%s.json"
	ArchiveRefundObjectFormat  = "payments/%s/refund-%s.json"
	ArchiveWebhookObjectFormat = "webhooks/%s/%s.json"
)

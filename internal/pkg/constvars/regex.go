package constvars

const (
	RegexTimeHHMM     = `^([01]\d|2[0-3]):[0-5]\d$`
	RegexDateYYYYMMDD = `^\d{4}-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])$`
	RegexObjectIDHex  = `^[a-fA-F0-9]{24}$`
)

package config

const (
	// Credit codes
	CreditCodeLength   = 3
	CreditCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// How many collision retries Create tolerates before giving up.
	// 36^3 codes exist; a low-volume deployment never gets close.
	MaxCodeAttempts = 100

	// User login codes
	UserCodeLength = 4

	// Session cookie
	SessionName   = "domcredsys_session"
	SessionMaxAge = 12 * 60 * 60 // seconds

	// Flash buckets
	FlashSuccess = "success"
	FlashError   = "error"
)

package utils

// MaskToken redacts a credential for logging, keeping the first and last four
// characters. Short tokens are fully redacted.
func MaskToken(token string) string {
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "***" + token[len(token)-4:]
}

package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"storefront/internal/dto"
)

// telegramAuthWindow is the freshness window on auth_date: older widget
// payloads are rejected to limit replay.
const telegramAuthWindow = 5 * 60 // seconds

// SignTelegramPayload computes the login-widget hash for a payload:
// HMAC-SHA256 over the alphabetically sorted "key=value\n"-joined
// data-check string of all present fields except hash, keyed by
// SHA256(botToken). Exported for tests and seed tooling.
func SignTelegramPayload(req dto.TelegramLoginRequest, botToken string) string {
	fields := map[string]string{
		"auth_date": strconv.FormatInt(req.AuthDate, 10),
		"id":        strconv.FormatInt(req.ID, 10),
	}
	if req.FirstName != "" {
		fields["first_name"] = req.FirstName
	}
	if req.LastName != "" {
		fields["last_name"] = req.LastName
	}
	if req.Username != "" {
		fields["username"] = req.Username
	}
	if req.PhotoURL != "" {
		fields["photo_url"] = req.PhotoURL
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+fields[k])
	}

	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(strings.Join(pairs, "\n")))
	return hex.EncodeToString(mac.Sum(nil))
}

// ValidateTelegramHash verifies the widget signature in constant time.
// Equality of the computed and supplied hash is the sole authenticity check;
// freshness of auth_date is enforced separately by the login flow.
func ValidateTelegramHash(req dto.TelegramLoginRequest, botToken string) bool {
	if req.Hash == "" || botToken == "" {
		return false
	}
	computed := SignTelegramPayload(req, botToken)
	return hmac.Equal([]byte(computed), []byte(req.Hash))
}

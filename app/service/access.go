package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Access tokens tie the hosted page parameters to this service so the
// partner/company pair cannot be swapped on the redirect URL.

func (s *BillingService) generateAccessToken(partnerID, companyID uint64) string {
	mac := hmac.New(sha256.New, []byte(s.accessKey))
	_, _ = fmt.Fprintf(mac, "%d:%d", partnerID, companyID)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *BillingService) verifyAccessToken(token string, partnerID, companyID uint64) bool {
	expected := s.generateAccessToken(partnerID, companyID)
	candidate, err := hex.DecodeString(token)
	if err != nil {
		return false
	}
	raw, err := hex.DecodeString(expected)
	if err != nil {
		return false
	}
	return hmac.Equal(candidate, raw)
}

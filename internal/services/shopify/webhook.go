package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

const (
	TopicProductsCreate = "products/create"
	TopicProductsUpdate = "products/update"
	TopicProductsDelete = "products/delete"
)

// VerifyWebhook checks the X-Shopify-Hmac-Sha256 header against the raw body.
func VerifyWebhook(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	return hmac.Equal([]byte(SignWebhook(secret, body)), []byte(signature))
}

// SignWebhook computes the signature Shopify would send for body.
func SignWebhook(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

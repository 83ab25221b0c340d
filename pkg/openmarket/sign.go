package openmarket

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// 签名日期格式，平台要求 UTC
const signedDateLayout = "060102T150405Z"

// Sign 生成请求签名头
// 签名串 = signed-date + method + path + query（query 不含 '?'）
func Sign(method, path, query, accessKey, secretKey string, now time.Time) string {
	signedDate := now.UTC().Format(signedDateLayout)
	message := signedDate + method + path + query

	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(message))
	signature := hex.EncodeToString(mac.Sum(nil))

	return fmt.Sprintf(
		"CEA algorithm=HmacSHA256, access-key=%s, signed-date=%s, signature=%s",
		accessKey, signedDate, signature,
	)
}

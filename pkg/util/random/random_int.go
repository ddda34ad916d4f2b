package random

import (
	"crypto/rand"
	"math/big"
	"time"
)

const (
	alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	upperCode    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// randomString 从 charset 中安全地随机取 length 个字符
func randomString(charset string, length int) string {
	result := make([]byte, length)
	charsetLen := big.NewInt(int64(len(charset)))
	for i := range result {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			result[i] = charset[0]
			continue
		}
		result[i] = charset[n.Int64()]
	}
	return string(result)
}

// GetNowAndLenRandomString 生成带时间戳前缀的随机字符串（用于 UUID）
// 格式: YYMMDD + 字母数字混合
// 示例: 241230AbCdE1234567
func GetNowAndLenRandomString(length int) string {
	return time.Now().Format("060102") + randomString(alphanumeric, length)
}

// GetUpperCode 生成大写字母和数字组成的短码，用作用户公开 ID
func GetUpperCode(length int) string {
	return randomString(upperCode, length)
}

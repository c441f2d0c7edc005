package common

import "crypto/rand"

const randomStringCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func GenerateRandomString(length int) (string, error) {
	bytes := make([]byte, length)
	charsetLength := byte(len(randomStringCharset))

	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	for i := range bytes {
		bytes[i] = randomStringCharset[bytes[i]%charsetLength]
	}

	return string(bytes), nil
}

const randomDigitCharset = "0123456789"

// GenerateRandomDigits returns a numeric string suitable for use as an
// out-of-band one-time code.
func GenerateRandomDigits(length int) (string, error) {
	bytes := make([]byte, length)
	charsetLength := byte(len(randomDigitCharset))

	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	for i := range bytes {
		bytes[i] = randomDigitCharset[bytes[i]%charsetLength]
	}

	return string(bytes), nil
}

package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

func GenerateID() string {
	id, err := gonanoid.Generate(idAlphabet, 7)
	if err != nil {
		return ""
	}
	return id
}

// GenerateLongID returns a 21 character identifier for object keys where
// the short form has too high a collision chance.
func GenerateLongID() string {
	id, err := gonanoid.Generate(idAlphabet, 21)
	if err != nil {
		return ""
	}
	return id
}

package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// GenerateInvocationID creates a short correlation id for one processing run.
func GenerateInvocationID() string {
	alphabet := "abcdefghijklmnopqrstuvwxyz0123456789"
	id, err := gonanoid.Generate(alphabet, 12)
	if err != nil {
		panic(err)
	}
	return id
}

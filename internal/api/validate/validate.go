package validate

import (
	"fmt"
	"regexp"
)

// UserID must be lowercase letters, digits, underscore, 1-20 chars
var userIdRx = regexp.MustCompile(`^[a-z0-9_]{1,20}$`)

// ConversationID is an opaque identifier, currently a UUID.
var conversationIdRx = regexp.MustCompile(`^[0-9a-fA-F-]{36}$`)

const maxTurnContentBytes = 2000

func UserID(v string) error {
	if v == "" {
		return fmt.Errorf("userId is required")
	}
	if !userIdRx.MatchString(v) {
		return fmt.Errorf("userId must match %s", userIdRx.String())
	}
	return nil
}

func ConversationID(v string) error {
	if v == "" {
		return fmt.Errorf("conversationId is required")
	}
	if !conversationIdRx.MatchString(v) {
		return fmt.Errorf("conversationId must be a UUID")
	}
	return nil
}

// TurnContent bounds a single user utterance. Empty content is allowed;
// the dialogue coerces unusable answers instead of rejecting them.
func TurnContent(v string) error {
	if len(v) > maxTurnContentBytes {
		return fmt.Errorf("content exceeds %d bytes", maxTurnContentBytes)
	}
	return nil
}

func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// Coordinates checks a caller-supplied device location.
func Coordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude out of range")
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude out of range")
	}
	return nil
}

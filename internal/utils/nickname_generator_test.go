package utils

import (
	"regexp"
	"testing"
)

var nicknamePattern = regexp.MustCompile(`^[A-Za-z]+_[A-Za-z]+_\d{4}$`)

func TestGenerateNickname(t *testing.T) {
	for i := 0; i < 50; i++ {
		name, err := GenerateNickname()
		if err != nil {
			t.Fatalf("GenerateNickname failed: %v", err)
		}
		if !nicknamePattern.MatchString(name) {
			t.Errorf("unexpected nickname format: %q", name)
		}
	}
}

package otp

import (
	"testing"
	"time"
)

func TestChallengeVerify(t *testing.T) {
	issued := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	c := NewChallenge("482913", issued, 5*time.Minute)

	tests := []struct {
		name      string
		candidate string
		at        time.Time
		want      bool
	}{
		{name: "match inside window", candidate: "482913", at: issued.Add(4 * time.Minute), want: true},
		{name: "wrong code", candidate: "482914", at: issued.Add(time.Minute), want: false},
		{name: "at expiry", candidate: "482913", at: issued.Add(5 * time.Minute), want: false},
		{name: "after expiry", candidate: "482913", at: issued.Add(time.Hour), want: false},
		{name: "empty candidate", candidate: "", at: issued, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Verify(tt.candidate, tt.at); got != tt.want {
				t.Errorf("Verify = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChallengeDefaultTTL(t *testing.T) {
	issued := time.Unix(1700000000, 0)
	c := NewChallenge("1234", issued, 0)
	if !c.ExpiresAt.Equal(issued.Add(DefaultChallengeTTL)) {
		t.Errorf("ExpiresAt = %v", c.ExpiresAt)
	}

	var zero Challenge
	if zero.Verify("", issued) {
		t.Error("zero challenge verified an empty code")
	}
}

package utils

import (
	"context"
	"testing"
)

func TestIsE164(t *testing.T) {
	valid := []string{
		"+33612345678",
		"+14155552671",
		"+4915123456789",
	}
	for _, number := range valid {
		if !IsE164(number) {
			t.Errorf("expected %q to be valid E.164", number)
		}
	}

	invalid := []string{
		"",
		"0612345678",       // no plus prefix
		"+0612345678",      // leading zero after plus
		"+336123",          // too short
		"+3361234567890123", // too long
		"+33 6 12 34 56 78", // spaces
		"not-a-number",
	}
	for _, number := range invalid {
		if IsE164(number) {
			t.Errorf("expected %q to be rejected", number)
		}
	}
}

func TestValidatePhoneNumberSyntaxOnly(t *testing.T) {
	ok, err := ValidatePhoneNumber(context.Background(), "+33612345678", nil, false, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected valid E.164 number to pass without Twilio")
	}

	ok, err = ValidatePhoneNumber(context.Background(), "0612345678", nil, false, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected non-E.164 number to fail")
	}
}

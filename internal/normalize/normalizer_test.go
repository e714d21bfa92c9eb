package normalize

import (
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "amount and app noise masked",
			raw:  "₹389 paid to SWIGGY via GPay",
			want: "amt paid to swiggy",
		},
		{
			name: "app prefix stripped and spelling fixed",
			raw:  "Google Pay: You paid ₹2,499.00 to AMAZN Pay using UPI",
			want: "you paid amt to amazon",
		},
		{
			name: "phone number masked",
			raw:  "Sent to 9876543210",
			want: "sent to phonenum",
		},
		{
			name: "payment handle masked",
			raw:  "paid to merchant@okaxis",
			want: "paid to upiid",
		},
		{
			name: "rs prefix amount",
			raw:  "Rs. 120 debited for petrol",
			want: "amt debited for petrol",
		},
		{
			name: "empty input",
			raw:  "",
			want: "",
		},
		{
			name: "whitespace only",
			raw:  "   \t  ",
			want: "",
		},
		{
			name: "punctuation only",
			raw:  "!!! ??? ---",
			want: "",
		},
		{
			name: "informal spelling canonicalized",
			raw:  "dinner at restaurent",
			want: "dinner at restaurant",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.raw)
			if got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"₹389 paid to SWIGGY via GPay",
		"Google Pay: You paid ₹2,499.00 to AMAZN Pay using UPI",
		"Sent to 9876543210 via PhonePe",
		"paid to merchant@okaxis",
		"plain text with no entities",
		"",
	}

	for _, raw := range inputs {
		once := Clean(raw)
		twice := Clean(once)
		if once != twice {
			t.Errorf("Clean not idempotent on %q: first %q, second %q", raw, once, twice)
		}
	}
}

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   float64
		wantOK bool
	}{
		{name: "rupee symbol", raw: "You paid ₹389 to Swiggy", want: 389, wantOK: true},
		{name: "rs with comma and paise", raw: "Rs. 2,499.00 debited", want: 2499, wantOK: true},
		{name: "inr prefix", raw: "INR 1200 transferred", want: 1200, wantOK: true},
		{name: "indian digit grouping", raw: "credited 1,20,000.50 to account", want: 120000.50, wantOK: true},
		{name: "no amount", raw: "payment declined", wantOK: false},
		{name: "empty", raw: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractAmount(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("ExtractAmount(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ExtractAmount(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestExtractRecipient(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "credit resolves to you", raw: "Received ₹500 from Ravi", want: "You"},
		{name: "interest credit", raw: "Interest credited to your account", want: "You"},
		{name: "named merchant", raw: "Paid to Swiggy using Google Pay", want: "swiggy"},
		{name: "merchant at location", raw: "Paid at dominos with card", want: "dominos"},
		{name: "phone recipient", raw: "Sent to 9876543210 via UPI", want: "9876543210"},
		{name: "handle recipient", raw: "payment of rs 100 towards merchant@okaxis", want: "merchant@okaxis"},
		{name: "nothing extractable", raw: "transaction completed", want: "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractRecipient(tt.raw)
			if got != tt.want {
				t.Errorf("ExtractRecipient(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

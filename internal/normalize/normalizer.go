// Package normalize turns raw banking notification text into the clean,
// deterministic form consumed by every downstream stage. The transform is
// pure, total, and idempotent: normalizing already-normalized text is a
// no-op, and no input (including empty) produces an error.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// Placeholder tokens substituted for volatile entities so the classifier
// generalizes across amounts, phone numbers, and payment handles.
const (
	AmountToken = "amt"
	PhoneToken  = "phonenum"
	HandleToken = "upiid"
)

var (
	reUPIHandle = regexp.MustCompile(`\b[a-z0-9][\w.-]*@[a-z]\w*\b`)
	reLongDigit = regexp.MustCompile(`\b\d{7,}\b`)
	reAmount    = regexp.MustCompile(`(?:₹|rs\.?|inr)?\s*\d[\d,]*(?:\.\d{1,2})?`)
	rePunct     = regexp.MustCompile(`[^a-z0-9 ]`)
	reSpace     = regexp.MustCompile(`\s+`)

	reExtractAmount = regexp.MustCompile(`(?i)(?:₹|rs\.?|inr)?\s*([\d,]+(?:\.\d{1,2})?)`)
	rePhone         = regexp.MustCompile(`\b\d{10}\b`)
	reHandle        = regexp.MustCompile(`\b[\w.-]+@\w+\b`)
)

// App-name prefixes stripped when a notification arrives with its source
// app baked into the text.
var boilerplatePrefixes = []string{
	"google pay:",
	"gpay:",
	"phonepe:",
	"paytm:",
	"upi alert:",
	"txn alert:",
	"alert:",
}

// Tokens that carry no category signal; removed after entity masking.
var noiseTokens = map[string]bool{
	"google":  true,
	"pay":     true,
	"gpay":    true,
	"phonepe": true,
	"paytm":   true,
	"upi":     true,
	"using":   true,
	"via":     true,
	"gp":      true,
}

// Fixed substitution table mapping informal spellings of domain terms to
// their canonical form. Keys are matched on word boundaries; canonical
// values never match another key, which keeps the transform idempotent.
var spellingFixes = []struct {
	variant   *regexp.Regexp
	canonical string
}{
	{regexp.MustCompile(`\brestaurent\b`), "restaurant"},
	{regexp.MustCompile(`\brestro\b`), "restaurant"},
	{regexp.MustCompile(`\bresto\b`), "restaurant"},
	{regexp.MustCompile(`\btution\b`), "tuition"},
	{regexp.MustCompile(`\bamazn\b`), "amazon"},
	{regexp.MustCompile(`\bflip cart\b`), "flipkart"},
	{regexp.MustCompile(`\binstalment\b`), "installment"},
	{regexp.MustCompile(`\belec\b`), "electricity"},
	{regexp.MustCompile(`\bpetrl\b`), "petrol"},
	{regexp.MustCompile(`\brecharge?d\b`), "recharge"},
}

// Clean normalizes raw notification text for model input. Steps, in order:
// lowercase, strip app boilerplate, canonicalize informal spellings, mask
// payment handles, phone-shaped digit runs and amounts, drop punctuation
// and noise tokens, collapse whitespace.
func Clean(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	if t == "" {
		return ""
	}

	for _, prefix := range boilerplatePrefixes {
		if strings.HasPrefix(t, prefix) {
			t = strings.TrimSpace(strings.TrimPrefix(t, prefix))
			break
		}
	}

	for _, fix := range spellingFixes {
		t = fix.variant.ReplaceAllString(t, fix.canonical)
	}

	// Entity masking runs most-specific first: handles contain digits,
	// phone numbers are longer than amounts.
	t = reUPIHandle.ReplaceAllString(t, " "+HandleToken+" ")
	t = reLongDigit.ReplaceAllString(t, " "+PhoneToken+" ")
	t = reAmount.ReplaceAllString(t, " "+AmountToken+" ")

	t = rePunct.ReplaceAllString(t, " ")

	fields := strings.Fields(t)
	kept := fields[:0]
	for _, f := range fields {
		if !noiseTokens[f] {
			kept = append(kept, f)
		}
	}

	return strings.TrimSpace(reSpace.ReplaceAllString(strings.Join(kept, " "), " "))
}

// ExtractAmount pulls the first amount-like token out of raw text.
// Recognizes ₹389, Rs 389, RS. 2,499.00, INR 1200 and bare 1,20,000.50.
func ExtractAmount(raw string) (float64, bool) {
	m := reExtractAmount.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var recipientPatterns = []*regexp.Regexp{
	regexp.MustCompile(`paid to (.+?)(?: using| via| with|$)`),
	regexp.MustCompile(`paid at (.+?)(?: using| via| with|$)`),
	regexp.MustCompile(`sent to (.+?)(?: using| via| with|$)`),
	regexp.MustCompile(`received from (.+?)(?: using| via| with|$)`),
	regexp.MustCompile(`credited from (.+?)(?: using| via| with|$)`),
}

var recipientNoise = []string{
	"google pay", "gpay", "phonepe", "paytm", "upi",
	"transaction", "refno", "ref", "using", "via",
}

var creditKeywords = []string{"received", "credited", "deposit", "refunded", "reversed"}

// ExtractRecipient pulls the merchant or recipient out of raw text,
// preferring a named merchant over a phone number over a payment handle.
// Credit-style notifications resolve to "You".
func ExtractRecipient(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))

	for _, kw := range creditKeywords {
		if strings.Contains(t, kw) {
			return "You"
		}
	}

	for _, pat := range recipientPatterns {
		m := pat.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		for _, w := range recipientNoise {
			name = strings.TrimSpace(strings.ReplaceAll(name, w, ""))
		}
		// Merchant names rarely run past two words; the rest is noise.
		if parts := strings.Fields(name); len(parts) > 2 {
			name = strings.Join(parts[:2], " ")
		}
		if name != "" {
			return name
		}
	}

	if phone := rePhone.FindString(t); phone != "" {
		return phone
	}
	if handle := reHandle.FindString(t); handle != "" {
		return handle
	}

	return "Unknown"
}

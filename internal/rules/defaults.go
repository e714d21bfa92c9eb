package rules

// DefaultRules is the built-in rule table covering the unambiguous
// category signals seen in Indian banking notifications. Priorities run
// highest-first; ties between categories resolve in table order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Category:    "Fuel",
			Keywords:    []string{"petrol", "diesel", "pump", "fuel", "hpcl", "bpcl", "indianoil", "ioc"},
			Patterns:    []string{`\bpetrol pump\b`, `\bfuel station\b`},
			Fuzzy:       []string{"petrol bunk", "fuel pump", "gas station"},
			FuzzyWeight: 1.2,
			Norm:        3.0,
			Priority:    140,
		},
		{
			Category:    "Travel",
			Keywords:    []string{"uber", "ola", "rapido", "cab", "bus", "metro", "flight", "train", "ticket"},
			Patterns:    []string{`\bflight ticket\b`, `\brail(ticket)?\b`, `\bmetro recharge\b`},
			Fuzzy:       []string{"ola cab", "uber trip"},
			FuzzyWeight: 1.0,
			Norm:        4.0,
			Priority:    130,
		},
		{
			Category:    "Food",
			Keywords:    []string{"zomato", "swiggy", "dominos", "pizza", "restaurant", "hotel", "tiffin", "caf"},
			Patterns:    []string{`\bfood order\b`, `\bhotel booking\b`},
			Fuzzy:       []string{"restaurent", "restro", "resto"},
			FuzzyWeight: 1.0,
			Norm:        3.5,
			Priority:    120,
		},
		{
			Category:    "Bills",
			Keywords:    []string{"electricity", "power", "bill", "recharge", "phone bill", "gas", "water"},
			Patterns:    []string{`\belectricity bill\b`, `\bmobile recharge\b`, `\bdth recharge\b`},
			Fuzzy:       []string{"electric bill", "elec bill"},
			FuzzyWeight: 1.1,
			Norm:        4.0,
			Priority:    110,
		},
		{
			Category:    "Shopping",
			Keywords:    []string{"amazon", "flipkart", "myntra", "ajio", "dmart", "bigbasket", "mall", "store"},
			Patterns:    []string{`\bqr purchase\b`, `\bpos purchase\b`},
			Fuzzy:       []string{"amazn", "flip cart"},
			FuzzyWeight: 1.0,
			Norm:        3.5,
			Priority:    100,
		},
		{
			Category:    "Healthcare",
			Keywords:    []string{"hospital", "clinic", "doctor", "pharmacy", "medplus", "lab test"},
			Patterns:    []string{`\bmedical bill\b`, `\bhospital bill\b`},
			Fuzzy:       []string{"hosp", "medic"},
			FuzzyWeight: 1.0,
			Norm:        3.0,
			Priority:    90,
		},
		{
			Category:    "Education",
			Keywords:    []string{"school", "college", "tuition", "fees", "university", "coaching"},
			Patterns:    []string{`\btuition fee\b`, `\bexam fee\b`},
			Fuzzy:       []string{"tution", "scl fees"},
			FuzzyWeight: 1.0,
			Norm:        3.0,
			Priority:    80,
		},
		{
			Category:    "Entertainment",
			Keywords:    []string{"netflix", "spotify", "movie", "ticketnew", "bookmyshow", "gaming", "psn"},
			Patterns:    []string{`\bmovie ticket\b`, `\bconcert\b`},
			Fuzzy:       []string{"bookmy show", "sony liv"},
			FuzzyWeight: 1.0,
			Norm:        3.0,
			Priority:    70,
		},
		{
			Category:    "Fund Transfer",
			Keywords:    []string{"sent to", "transfer", "imps", "neft"},
			Patterns:    []string{`\bsent to\b`, `\bto mom\b`, `\btransfer to\b`},
			Fuzzy:       []string{"fund transf", "money sent"},
			FuzzyWeight: 1.2,
			Norm:        4.0,
			Priority:    60,
		},
		{
			Category:    "Cashback",
			Keywords:    []string{"cashback", "reward", "offer", "refunded", "credited back"},
			Patterns:    []string{`\bcash ?back\b`, `\brefunded\b`},
			FuzzyWeight: 0.8,
			Norm:        2.0,
			Priority:    50,
		},
		{
			Category:    "EMI",
			Keywords:    []string{"emi", "installment", "loan repayment", "equated"},
			Patterns:    []string{`\bloan emi\b`, `\bemi due\b`},
			Fuzzy:       []string{"instalment", "auto-debit emi"},
			FuzzyWeight: 1.3,
			Norm:        2.5,
			Priority:    40,
		},
		{
			Category:    "Interest",
			Keywords:    []string{"interest credited", "interest earned", "interest payout", "credit interest"},
			Patterns:    []string{`\binterest (?:credited|earned)\b`},
			FuzzyWeight: 1.0,
			Norm:        2.5,
			Priority:    30,
		},
		{
			Category:    "ATM Withdrawal",
			Keywords:    []string{"atm withdrawal", "atm cash", "cash withdrawal", "pos withdrawal"},
			Patterns:    []string{`\batm\b`, `\bpos\b`, `\bcash w/d\b`},
			Fuzzy:       []string{"atm wd", "atm cash wd"},
			FuzzyWeight: 1.2,
			Norm:        3.0,
			Priority:    20,
		},
		{
			Category:    "Refund",
			Keywords:    []string{"reversal", "refund", "chargeback", "reversed", "refunded"},
			Patterns:    []string{`\btransaction reversed\b`, `\btxn reversal\b`},
			Fuzzy:       []string{"refund issued", "amount reversed"},
			FuzzyWeight: 1.0,
			Norm:        2.5,
			Priority:    10,
		},
	}
}

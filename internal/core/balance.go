package core

// Balance is the net sum of income minus expense amounts. Transactions with
// any other type contribute nothing.
func Balance(ts []Transaction) Money {
	var total Money
	for _, t := range ts {
		switch t.Type {
		case Income:
			total = total.Add(t.Amount)
		case Expense:
			total = total.Sub(t.Amount)
		}
	}
	return total
}

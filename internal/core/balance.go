package core

// StockBalance computes the quantity on hand per explosive type:
// total received minus total issued. Types with no data report zero.
// A negative balance is valid output (over-issued magazine) and signals
// an operational problem, not a computation fault.
func StockBalance(stock []StockRecord, issuance []IssuanceRecord) Quantities {
	balance := make(Quantities, len(ExplosiveTypes()))
	for _, t := range ExplosiveTypes() {
		balance[t] = 0
	}
	for _, s := range stock {
		balance[s.ExplosiveType] += s.Quantity
	}
	for _, r := range issuance {
		for _, t := range ExplosiveTypes() {
			balance[t] -= r.Quantities.Get(t)
		}
	}
	return balance
}

// LowStock returns the types whose balance is at or below the threshold,
// in the fixed enumeration order.
func LowStock(balance Quantities, threshold int) []ExplosiveType {
	var low []ExplosiveType
	for _, t := range ExplosiveTypes() {
		if balance.Get(t) <= threshold {
			low = append(low, t)
		}
	}
	return low
}

// Totals sums issued quantities per type over the given records.
func Totals(issuance []IssuanceRecord) Quantities {
	totals := make(Quantities, len(ExplosiveTypes()))
	for _, t := range ExplosiveTypes() {
		totals[t] = 0
	}
	for _, r := range issuance {
		for _, t := range ExplosiveTypes() {
			totals[t] += r.Quantities.Get(t)
		}
	}
	return totals
}

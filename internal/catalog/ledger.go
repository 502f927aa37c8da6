package catalog

// Ledger maps item ids to their last computed borrow fine.
// Entries keep the position of their first insertion when overwritten.
type Ledger struct {
	order   []int
	amounts map[int]float64
}

func NewLedger() *Ledger {
	return &Ledger{amounts: make(map[int]float64)}
}

// Record sets the fine for an item, replacing any previous amount.
func (l *Ledger) Record(itemID int, amount float64) {
	if _, ok := l.amounts[itemID]; !ok {
		l.order = append(l.order, itemID)
	}
	l.amounts[itemID] = amount
}

func (l *Ledger) Amount(itemID int) (float64, bool) {
	amount, ok := l.amounts[itemID]
	return amount, ok
}

func (l *Ledger) Len() int {
	return len(l.order)
}

// Entries returns the ledger contents in insertion order.
func (l *Ledger) Entries() []FineEntry {
	entries := make([]FineEntry, 0, len(l.order))
	for _, id := range l.order {
		entries = append(entries, FineEntry{ItemID: id, Amount: l.amounts[id]})
	}
	return entries
}

func (l *Ledger) Total() float64 {
	var total float64
	for _, amount := range l.amounts {
		total += amount
	}
	return total
}

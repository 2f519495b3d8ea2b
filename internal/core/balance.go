package core

// BalanceEdit is the in-place editor for the dashboard balance. The balance
// is a freestanding figure: recording transactions never changes it.
type BalanceEdit struct {
	Balance Money
	Editing bool
	Buffer  string
}

// Toggle enters or leaves edit mode. Entering seeds Buffer from the
// committed balance; leaving commits ParseBalance(Buffer).
func (e BalanceEdit) Toggle() BalanceEdit {
	if !e.Editing {
		return BalanceEdit{Balance: e.Balance, Editing: true, Buffer: e.Balance.InputString()}
	}
	return BalanceEdit{Balance: ParseBalance(e.Buffer)}
}

// CommitBalance is the leave-edit half of Toggle for callers that only hold
// the submitted buffer.
func CommitBalance(buffer string) Money {
	return BalanceEdit{Editing: true, Buffer: buffer}.Toggle().Balance
}

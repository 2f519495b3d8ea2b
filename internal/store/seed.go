package store

import "walletwhisper/internal/core"

// SeedData is the sample wallet a fresh installation starts with.
type SeedData struct {
	Balance      core.Money
	Transactions []core.Transaction
	Goals        []core.Goal
	Reminders    []core.Reminder
	Priorities   []core.Priority
	Settings     core.Settings
}

// DefaultSeed returns a new copy of the sample wallet on every call.
func DefaultSeed() SeedData {
	return SeedData{
		Balance: core.NewMoney(45000),
		Transactions: []core.Transaction{
			{ID: 1, Amount: core.NewMoney(1500), Category: core.CategoryTransport, Note: "Bus fare to school", Date: core.NewDate(2024, 1, 15)},
			{ID: 2, Amount: core.NewMoney(2000), Category: core.CategoryData, Note: "Monthly data bundle", Date: core.NewDate(2024, 1, 14), Recurring: true},
			{ID: 3, Amount: core.NewMoney(5000), Category: core.CategoryDebts, Note: "Partial payment to John", Date: core.NewDate(2024, 1, 13), IsRepayment: true},
			{ID: 4, Amount: core.NewMoney(800), Category: core.CategoryFood, Note: "Lunch", Date: core.NewDate(2024, 1, 13)},
		},
		Goals: []core.Goal{
			{ID: 1, Title: "Power Bank", Target: core.NewMoney(12000), Current: core.NewMoney(8500), Notes: "For school and emergencies"},
			{ID: 2, Title: "School Feeding", Target: core.NewMoney(30000), Current: core.NewMoney(15000), Notes: "Next semester meal plan", Locked: true},
			{ID: 3, Title: "Emergency Fund", Target: core.NewMoney(50000), Current: core.NewMoney(12000), Notes: "For unexpected expenses", Locked: true, PiggyMode: true},
		},
		Reminders: []core.Reminder{
			{ID: 1, Title: "Lecturer Airtime", Amount: core.NewMoney(2000), DueDate: core.NewDate(2024, 1, 19), Category: core.ReminderSchool, NotificationEnabled: true},
			{ID: 2, Title: "Data Subscription", Amount: core.NewMoney(2500), DueDate: core.NewDate(2024, 1, 15), Category: core.ReminderSubscriptions, Recurring: true, NotificationEnabled: true},
			{ID: 3, Title: "Transport Money", Amount: core.NewMoney(3500), DueDate: core.NewDate(2024, 1, 20), Category: core.ReminderTransport},
		},
		Priorities: []core.Priority{
			{ID: 1, Text: "Pay debt ₦8,000", Urgent: true},
			{ID: 2, Text: "School feeding ₦15,000", Important: true},
			{ID: 3, Text: "Transport this week ₦3,500", Done: true},
			{ID: 4, Text: "Data subscription ₦2,000"},
		},
		Settings: core.DefaultSettings(),
	}
}

// Empty is a wallet with nothing recorded.
func Empty() SeedData {
	return SeedData{Settings: core.DefaultSettings()}
}

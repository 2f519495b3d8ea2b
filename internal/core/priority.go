package core

// Priority is an item on the dashboard's "this week" list.
type Priority struct {
	ID        int64
	Text      string
	Urgent    bool
	Important bool
	Done      bool
}

// TogglePriority flips the done flag of the matching item.
func TogglePriority(list []Priority, id int64) ([]Priority, Priority, error) {
	for i := range list {
		if list[i].ID == id {
			out := append([]Priority(nil), list...)
			out[i].Done = !out[i].Done
			return out, out[i], nil
		}
	}
	return list, Priority{}, ErrPriorityNotFound
}

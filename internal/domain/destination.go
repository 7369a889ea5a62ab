package domain

// Expenses is the budget breakdown of a destination, as a fixed, enumerable
// set of categories. The categories mirror what the remote authority stores;
// a value type keeps snapshots copyable without aliasing.
type Expenses struct {
	Flights        float64 `json:"flights"`
	Accommodation  float64 `json:"accommodation"`
	Food           float64 `json:"food"`
	Activities     float64 `json:"activities"`
	Transportation float64 `json:"transportation"`
	Shopping       float64 `json:"shopping"`
	Others         float64 `json:"others"`
}

// Total sums all expense categories.
func (e Expenses) Total() float64 {
	return e.Flights + e.Accommodation + e.Food + e.Activities +
		e.Transportation + e.Shopping + e.Others
}

// Destination is one record in the travel list. ID is assigned by the remote
// authority and immutable once assigned. TotalBudget is a stored field: it is
// seeded from the expense breakdown at creation time but may drift under
// partial updates (a budget-only edit does not recompute the breakdown).
type Destination struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	PlannedDate string   `json:"plannedDate"`
	TotalBudget float64  `json:"totalBudget"`
	Visited     bool     `json:"visited"`
	Expenses    Expenses `json:"expenses"`
}

// DestinationDraft is the input for creating a destination. The record has no
// id until the remote authority assigns one.
type DestinationDraft struct {
	Name        string   `json:"name" validate:"required"`
	PlannedDate string   `json:"plannedDate" validate:"required"`
	Expenses    Expenses `json:"expenses"`
}

// Validate checks the draft locally before any network call.
func (d DestinationDraft) Validate() error {
	if err := validatorInstance.Struct(d); err != nil {
		return WrapFault(FaultValidation, "Name and planned date are required.", err)
	}
	return nil
}

// DestinationPatch is a partial update. Nil fields are left untouched, so a
// budget-only or visited-only edit never clobbers the rest of the record.
type DestinationPatch struct {
	Name        *string   `json:"name,omitempty"`
	PlannedDate *string   `json:"plannedDate,omitempty"`
	TotalBudget *float64  `json:"totalBudget,omitempty"`
	Visited     *bool     `json:"visited,omitempty"`
	Expenses    *Expenses `json:"expenses,omitempty"`
}

// Apply merges the patch into a copy of dst and returns it.
func (p DestinationPatch) Apply(dst Destination) Destination {
	if p.Name != nil {
		dst.Name = *p.Name
	}
	if p.PlannedDate != nil {
		dst.PlannedDate = *p.PlannedDate
	}
	if p.TotalBudget != nil {
		dst.TotalBudget = *p.TotalBudget
	}
	if p.Visited != nil {
		dst.Visited = *p.Visited
	}
	if p.Expenses != nil {
		dst.Expenses = *p.Expenses
	}
	return dst
}

// IsZero reports whether the patch changes nothing.
func (p DestinationPatch) IsZero() bool {
	return p.Name == nil && p.PlannedDate == nil && p.TotalBudget == nil &&
		p.Visited == nil && p.Expenses == nil
}

package model

// Kind indicates whether a category or record represents income or expenditure.
type Kind string

const (
	// KindIncome marks money coming in.
	KindIncome Kind = "INCOME"
	// KindExpenditure marks money going out.
	KindExpenditure Kind = "EXPENDITURE"
)

// Valid reports whether k is one of the two canonical kinds.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpenditure
}

// Category represents a user-visible grouping for records. The ID is the
// primary key and never changes after creation; name, kind and the custom
// flag are replaced together on update.
type Category struct {
	ID       string
	Name     string
	Kind     Kind
	IsCustom bool
}

package core

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// AllowedOrderings keeps the orderings whose field is a key of `columns`, mapped to the column name.
func AllowedOrderings(orderings []DBOrdering, columns map[string]string) []DBOrdering {
	allowed := make([]DBOrdering, 0, len(orderings))
	for _, ord := range orderings {
		if col, ok := columns[ord.Field]; ok {
			allowed = append(allowed, DBOrdering{Field: col, Ascending: ord.Ascending})
		}
	}
	return allowed
}

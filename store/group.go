package store

// GroupCompletion is one member's recorded value for a group habit on
// one date. Group habits keep a flat list of these tuples because
// multiple users complete the same habit instance.
type GroupCompletion struct {
	UserID int32           `json:"userId"`
	Date   string          `json:"date"`
	Value  CompletionValue `json:"value"`
}

// GroupHabit is a habit shared by all members of a group. It is stored
// inside the group document, mirroring the habit shape except for the
// completion list.
type GroupHabit struct {
	UID         string            `json:"uid"`
	Name        string            `json:"name"`
	Category    string            `json:"category,omitempty"`
	Type        HabitType         `json:"type"`
	Config      *HabitConfig      `json:"config,omitempty"`
	Completions []GroupCompletion `json:"completions"`
}

// Group is a shared habit group. JoinCode is an opaque invite string;
// redemption is handled outside this service.
type Group struct {
	ID          int32
	UID         string
	Name        string
	Description string
	AdminID     int32
	JoinCode    string
	Members     []int32
	Habits      []*GroupHabit
	CreatedTs   int64
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID int32) bool {
	for _, id := range g.Members {
		if id == userID {
			return true
		}
	}
	return false
}

// FindGroup is the find condition for groups. MemberID filters to
// groups the given user belongs to.
type FindGroup struct {
	ID       *int32
	UID      *string
	AdminID  *int32
	MemberID *int32
}

// UpdateGroup is the update request for a group.
type UpdateGroup struct {
	ID          int32
	Name        *string
	Description *string
	Members     []int32
	Habits      []*GroupHabit
}

// DeleteGroup is the delete request for a group.
type DeleteGroup struct {
	ID int32
}

package store

// User is the object representing an account.
type User struct {
	ID        int32
	UID       string
	Email     string
	Name      string
	IsPremium bool
	CreatedTs int64
}

// FindUser is the find condition for users.
type FindUser struct {
	ID        *int32
	UID       *string
	Email     *string
	IsPremium *bool
}

// UpdateUser is the update request for a user. Nil fields are left unchanged.
type UpdateUser struct {
	ID        int32
	Email     *string
	Name      *string
	IsPremium *bool
}

// DeleteUser is the delete request for a user.
type DeleteUser struct {
	ID int32
}

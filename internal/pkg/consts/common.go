package consts

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusAll      = "all"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

const (
	SortByDate  = "date"
	SortByLikes = "likes"
	SortAsc     = "asc"
	SortDesc    = "desc"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

const (
	UserIDKey = "user_id"
	RolesKey  = "roles"
)

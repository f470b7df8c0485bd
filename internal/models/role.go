package models

// Role is the access level of a session.
type Role string

const (
	RoleUnauthenticated Role = "unauthenticated"
	RoleVisitor         Role = "visitor"
	RoleCustomer        Role = "customer"
	RoleAdmin           Role = "admin"
)

// Screen identifies a top-level tab of the app.
type Screen string

const (
	ScreenHome      Screen = "home"
	ScreenSearch    Screen = "search"
	ScreenFavorites Screen = "favorites"
	ScreenProfile   Screen = "profile"
	ScreenAdmin     Screen = "admin"
)

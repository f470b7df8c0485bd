// Package navigation maps a session role to the screens it may reach.
package navigation

import "github.com/businessbook/directory/internal/models"

var (
	memberScreens = []models.Screen{
		models.ScreenHome,
		models.ScreenSearch,
		models.ScreenFavorites,
		models.ScreenProfile,
	}
	adminScreens = []models.Screen{
		models.ScreenAdmin,
		models.ScreenHome,
		models.ScreenSearch,
		models.ScreenProfile,
	}

	screenSets = map[models.Role][]models.Screen{
		models.RoleVisitor:  memberScreens,
		models.RoleCustomer: memberScreens,
		models.RoleAdmin:    adminScreens,
	}
)

// ScreensFor returns the ordered screens a role may reach. Unknown roles,
// including Unauthenticated, get the visitor set rather than nothing.
func ScreensFor(role models.Role) []models.Screen {
	set, ok := screenSets[role]
	if !ok {
		set = screenSets[models.RoleVisitor]
	}
	return append([]models.Screen(nil), set...)
}

// Allows reports whether role may reach screen.
func Allows(role models.Role, screen models.Screen) bool {
	for _, s := range ScreensFor(role) {
		if s == screen {
			return true
		}
	}
	return false
}

package domain

// HasRequiredRole reports whether callerRoles and requiredRoles intersect.
// An empty requiredRoles means no restriction.
func HasRequiredRole(callerRoles, requiredRoles []string) bool {
	if len(requiredRoles) == 0 {
		return true
	}
	for _, required := range requiredRoles {
		for _, role := range callerRoles {
			if role == required {
				return true
			}
		}
	}
	return false
}

package config

// GetAuthSkipperPaths returns a list of paths to skip authentication for
func GetAuthSkipperPaths() []string {
	// Public read paths (availability checks come from storefront, no auth)
	return []string{"/api/realtime/availability", "/graphql", "/health"}
}

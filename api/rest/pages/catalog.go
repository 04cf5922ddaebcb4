package pages

import "codeberg.org/edtech/portal/internal/routes"

// sidebar for a role with absolute paths
func navFor(role routes.Role) []NavItem {
	pages := routes.Pages(role)
	out := make([]NavItem, 0, len(pages))

	for _, p := range pages {
		out = append(out, NavItem{Title: p.Title, Path: p.URL(role)})
	}

	return out
}

package routes

import "strings"

// a page inside a role's area; Path is relative to the role prefix
type Page struct {
	Title string
	Path  string
}

// pages available to each role, in sidebar order
var catalog = map[Role][]Page{
	RoleStudent: {
		{Title: "Dashboard", Path: "dashboard"},
		{Title: "AI Tutor", Path: "ai-tutor"},
		{Title: "My Learning", Path: "my-learning"},
		{Title: "Learning Library", Path: "learning-library"},
		{Title: "Achievements", Path: "achievements"},
	},
	RoleTeacher: {
		{Title: "Dashboard", Path: "dashboard"},
		{Title: "Content Generator", Path: "content-generator"},
		{Title: "Assessment Generator", Path: "assessment-generator"},
		{Title: "Library", Path: "library"},
		{Title: "Images", Path: "media-toolkit/images"},
		{Title: "Slides", Path: "media-toolkit/slides"},
		{Title: "Comics", Path: "media-toolkit/comics"},
		{Title: "Video", Path: "media-toolkit/video"},
		{Title: "Web Search", Path: "media-toolkit/web-search"},
		{Title: "Class Grouping", Path: "class-grouping"},
		{Title: "Voice Coach", Path: "voice-coach"},
		{Title: "Reports", Path: "reports"},
	},
	RoleAdmin: {
		{Title: "Dashboard", Path: "dashboard"},
		{Title: "Management", Path: "management"},
		{Title: "Curriculum", Path: "curriculum"},
		{Title: "Classes & Subjects", Path: "classes-subjects"},
		{Title: "Settings", Path: "settings"},
	},
}

// returns the role's pages; nil for unknown roles
func Pages(role Role) []Page {
	return append([]Page(nil), catalog[role]...)
}

// finds a page by its path relative to the role prefix
func LookupPage(role Role, page string) (Page, bool) {
	page = strings.Trim(page, "/")

	for _, p := range catalog[role] {
		if p.Path == page {
			return p, true
		}
	}

	return Page{}, false
}

// absolute path of a role page
func (p Page) URL(role Role) string {
	return "/" + string(role) + "/" + p.Path
}

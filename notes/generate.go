package notes

// Category maps an issue label to a section title. The last category of a
// list is the catch-all for issues matching no earlier label.
type Category struct {
	Label string
	Title string
}

// DefaultCategories is the section order used when none is configured.
var DefaultCategories = []Category{
	{Label: "feature", Title: "New Features"},
	{Label: "enhancement", Title: "Enhancements"},
	{Label: "bug", Title: "Bug Fixes"},
	{Label: "_default", Title: "Other resolved tickets"},
}

// Filters selects the issues that make it into the notes.
type Filters struct {
	// If Ignore returns true, the issue will be excluded from the notes.
	Ignore func(issue *Issue) bool
}

// IgnorePullRequests excludes issues that are pull requests.
func IgnorePullRequests(issue *Issue) bool {
	return issue.PullRequest
}

// BuildSections returns one empty section per category, in category order.
func BuildSections(categories []Category) []*Section {
	sections := make([]*Section, 0, len(categories))
	for _, c := range categories {
		sections = append(sections, &Section{Label: c.Label, Name: c.Title})
	}
	return sections
}

// Classify puts every issue into exactly one section: the first category,
// in category order, whose label the issue carries, or the last category
// when none match. Section order is the category order regardless of the
// order of issues. Entries keep the order of issues.
func Classify(issues []*Issue, categories []Category, filters Filters) []*Section {
	sections := BuildSections(categories)
	if len(sections) == 0 {
		return sections
	}
	fallback := sections[len(sections)-1]
	for _, issue := range issues {
		if issue == nil {
			continue
		}
		if filters.Ignore != nil && filters.Ignore(issue) {
			continue
		}
		target := fallback
		for _, s := range sections {
			if issue.HasLabel(s.Label) {
				target = s
				break
			}
		}
		target.Entries = append(target.Entries, &Entry{
			IssueNumber: issue.Number,
			Title:       issue.Title,
			HTMLURL:     issue.HTMLURL,
			User:        issue.User,
		})
	}
	return sections
}

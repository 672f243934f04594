package autocomplete

// View is a type-erased State for callers that drive several kinds of
// autocomplete through one surface.
type View struct {
	Query       string `json:"query"`
	Suggestions []any  `json:"suggestions"`
	IsOpen      bool   `json:"is_open"`
	IsLoading   bool   `json:"is_loading"`
	Active      int    `json:"active"`
}

type Controller interface {
	Input(text string)
	Select(i int) bool
	Accept() bool
	Highlight(delta int)
	Focus()
	Blur()
	Cancel()
	Close()
	View() View
}

var _ Controller = (*Autocomplete[Suggestion])(nil)

func (a *Autocomplete[S]) View() View {
	s := a.Snapshot()
	items := make([]any, len(s.Suggestions))
	for i, sg := range s.Suggestions {
		items[i] = sg
	}
	return View{
		Query:       s.Query,
		Suggestions: items,
		IsOpen:      s.IsOpen,
		IsLoading:   s.IsLoading,
		Active:      s.Active,
	}
}

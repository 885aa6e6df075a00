package state

// Persisted is the part of State that survives restarts. Repository ids are
// regenerated on every start, so the selected repository is stored by path.
type Persisted struct {
	RepoPaths        []string
	SelectedRepoPath string
	ViewMode         ViewMode
}

// Persisted extracts the durable part of the current state.
func (s *Store) Persisted() Persisted {
	st := s.Snapshot()
	p := Persisted{ViewMode: st.ViewMode}
	for _, r := range st.Repositories {
		p.RepoPaths = append(p.RepoPaths, r.Path)
	}
	if repo, ok := st.SelectedRepo(); ok {
		p.SelectedRepoPath = repo.Path
	}
	return p
}

// Restore hydrates the store from durable state. Paths are added in order,
// then the stored selection and view mode are applied when still valid.
func (s *Store) Restore(p Persisted) {
	for _, path := range p.RepoPaths {
		s.AddRepo(path)
	}

	st := s.Snapshot()
	target := ""
	if len(st.Repositories) > 0 {
		target = st.Repositories[0].ID
	}
	for _, r := range st.Repositories {
		if r.Path == p.SelectedRepoPath {
			target = r.ID
			break
		}
	}
	if target != st.SelectedRepoID {
		s.SelectRepo(target)
	}
	if p.ViewMode.Valid() {
		s.SetViewMode(p.ViewMode)
	}
}

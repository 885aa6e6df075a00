package app

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/lineage/internal/git"
	"github.com/zjrosen/lineage/internal/log"
)

type repoValidatedMsg struct {
	path string
	info git.RepoInfo
	err  error
}

func newRepoInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "/path/to/repository"
	ti.Prompt = "› "
	ti.CharLimit = 4096
	return ti
}

func (m *Model) closeInput() {
	m.adding = false
	m.addErr = ""
	m.input.Blur()
	m.input.SetValue("")
}

// updateInput handles keys while the add-repository field is open. Enter
// validates the path off the update loop.
func (m *Model) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeInput()
		return nil
	case tea.KeyEnter:
		path := expandHome(strings.TrimSpace(m.input.Value()))
		if path == "" {
			m.addErr = "Enter a repository path."
			return nil
		}
		engine, ctx := m.engine, m.ctx
		return func() tea.Msg {
			info, err := engine.ValidateRepo(ctx, path)
			return repoValidatedMsg{path: path, info: info, err: err}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) handleRepoValidated(msg repoValidatedMsg) tea.Cmd {
	if !m.adding {
		return nil
	}
	if msg.err != nil {
		log.Info(log.CatGit, "rejected repository", "path", msg.path, "error", msg.err)
		m.addErr = errorText(msg.err)
		return nil
	}

	m.closeInput()
	m.store.AddRepo(msg.info.Path)
	for _, r := range m.store.Snapshot().Repositories {
		if r.Path == msg.info.Path {
			m.store.SelectRepo(r.ID)
			break
		}
	}
	m.saveRepositories()
	m.notify("Added " + msg.info.Name)
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

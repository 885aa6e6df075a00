package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/lineage/internal/git"
	"github.com/zjrosen/lineage/internal/keys"
	"github.com/zjrosen/lineage/internal/log"
	"github.com/zjrosen/lineage/internal/navlist"
)

// branchPicker is the modal branch list opened with b.
type branchPicker struct {
	repo     string
	branches []git.Branch
	selected string
	busy     bool
	err      string
	list     navlist.List
}

func (p *branchPicker) names() []string {
	names := make([]string, len(p.branches))
	for i, b := range p.branches {
		names[i] = b.Name
	}
	return names
}

func (p *branchPicker) current() string {
	for _, b := range p.branches {
		if b.IsCurrent {
			return b.Name
		}
	}
	return ""
}

type branchesMsg struct {
	repo     string
	branches []git.Branch
	err      error
}

type checkoutMsg struct {
	repo, branch string
	err          error
}

func (m *Model) openBranchPicker() {
	repo := repoPath(m.store.Snapshot())
	if repo == "" {
		return
	}
	m.picker = &branchPicker{repo: repo, busy: true}
	engine, ctx := m.engine, m.ctx
	m.enqueue(func() tea.Msg {
		branches, err := engine.ListBranches(ctx, repo)
		return branchesMsg{repo: repo, branches: branches, err: err}
	})
}

func (m *Model) handleBranches(msg branchesMsg) tea.Cmd {
	p := m.picker
	if p == nil || p.repo != msg.repo {
		return nil
	}
	p.busy = false
	if msg.err != nil {
		p.err = errorText(msg.err)
		return nil
	}
	p.branches = msg.branches
	p.selected = p.current()
	if p.selected == "" && len(p.branches) > 0 {
		p.selected = p.branches[0].Name
	}
	return nil
}

// updatePicker handles keys while the picker is open. The list commands
// are resolved through the key table but not emitted on the bus, so panels
// underneath never see them.
func (m *Model) updatePicker(msg tea.KeyMsg) tea.Cmd {
	p := m.picker
	id, _ := m.table.Resolve(msg, false)
	switch id {
	case keys.CmdSelectNext:
		if next, ok := navlist.Next(p.names(), p.selected); ok {
			p.selected = next
		}
	case keys.CmdSelectPrev:
		if prev, ok := navlist.Prev(p.names(), p.selected); ok {
			p.selected = prev
		}
	case keys.CmdCancel, keys.CmdPickBranch, keys.CmdQuit:
		m.picker = nil
	case keys.CmdActivate:
		if p.busy || p.selected == "" {
			return nil
		}
		if p.selected == p.current() {
			m.picker = nil
			return nil
		}
		p.busy = true
		p.err = ""
		engine, ctx, repo, name := m.engine, m.ctx, p.repo, p.selected
		return func() tea.Msg {
			return checkoutMsg{repo: repo, branch: name, err: engine.CheckoutBranch(ctx, repo, name)}
		}
	}
	return nil
}

// handleCheckout reloads history after a successful checkout. Failures stay
// in the picker so another branch can be tried.
func (m *Model) handleCheckout(msg checkoutMsg) tea.Cmd {
	if msg.err != nil {
		log.Warn(log.CatGit, "checkout failed", "repo", msg.repo, "branch", msg.branch, "error", msg.err)
		if m.picker != nil && m.picker.repo == msg.repo {
			m.picker.busy = false
			m.picker.err = errorText(msg.err)
			return nil
		}
		m.setStatus(errorText(msg.err), true)
		return nil
	}

	m.picker = nil
	m.notify("Switched to " + msg.branch)
	if msg.repo != repoPath(m.store.Snapshot()) {
		return nil
	}
	m.commitCursor, m.rangeAnchor, m.pinned = "", "", false
	m.store.SelectCommit("")
	m.enqueue(m.requestCommits(msg.repo), m.requestBranch(msg.repo))
	m.refreshWorking()
	return nil
}

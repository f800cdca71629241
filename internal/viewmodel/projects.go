package viewmodel

import (
	"context"
	"strings"
	"sync"

	"time-tracker/internal/logger"
	"time-tracker/internal/model"
)

const (
	confirmDeleteProject  = "Delete the project?"
	confirmArchiveProject = "Archive the project?"
)

// ProjectSelector manages the project dropdown and the create-project modal.
type ProjectSelector struct {
	svc     TimeTracker
	confirm Confirmer
	user    model.UserContext

	mu        sync.RWMutex
	projects  []model.Project
	selected  int
	showModal bool
	newName   string

	StateChanged             Signal
	SelectedProjectIDChanged Event[int]
	ProjectChanged           Signal
}

func NewProjectSelector(svc TimeTracker, confirm Confirmer, user model.UserContext) *ProjectSelector {
	return &ProjectSelector{svc: svc, confirm: confirm, user: user}
}

func (p *ProjectSelector) Initialize(ctx context.Context) {
	p.reload(ctx)
}

func (p *ProjectSelector) Projects() []model.Project {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.projects
}

func (p *ProjectSelector) SelectedProjectID() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.selected
}

func (p *ProjectSelector) ShowModal() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.showModal
}

func (p *ProjectSelector) NewProjectName() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.newName
}

// SetSelectedProjectID emits SelectedProjectIDChanged only on a real change.
func (p *ProjectSelector) SetSelectedProjectID(ctx context.Context, id int) {
	p.mu.Lock()
	if p.selected == id {
		p.mu.Unlock()
		return
	}
	p.selected = id
	p.mu.Unlock()
	p.SelectedProjectIDChanged.Emit(ctx, id)
	notify(ctx, &p.StateChanged)
}

func (p *ProjectSelector) SetNewProjectName(ctx context.Context, name string) {
	p.mu.Lock()
	p.newName = name
	p.mu.Unlock()
	notify(ctx, &p.StateChanged)
}

func (p *ProjectSelector) OpenModal(ctx context.Context) {
	p.mu.Lock()
	p.showModal = true
	p.mu.Unlock()
	notify(ctx, &p.StateChanged)
}

func (p *ProjectSelector) CloseModal(ctx context.Context) {
	p.mu.Lock()
	p.showModal = false
	p.newName = ""
	p.mu.Unlock()
	notify(ctx, &p.StateChanged)
}

// CreateProject creates a project from the modal's name. A blank name does
// nothing and a failed create keeps the modal open.
func (p *ProjectSelector) CreateProject(ctx context.Context) bool {
	name := strings.TrimSpace(p.NewProjectName())
	if name == "" {
		return false
	}
	if p.svc.CreateProject(ctx, p.user, name) == nil {
		return false
	}
	p.reload(ctx)
	notify(ctx, &p.ProjectChanged)
	p.CloseModal(ctx)
	return true
}

func (p *ProjectSelector) DeleteProjectWithConfirmation(ctx context.Context) bool {
	return p.retireSelected(ctx, confirmDeleteProject, p.svc.DeleteProject)
}

func (p *ProjectSelector) ArchiveProjectWithConfirmation(ctx context.Context) bool {
	return p.retireSelected(ctx, confirmArchiveProject, p.svc.ArchiveProject)
}

func (p *ProjectSelector) retireSelected(ctx context.Context, question string, retire func(context.Context, int)) bool {
	id := p.SelectedProjectID()
	if id == 0 {
		return false
	}
	ok, err := p.confirm.Confirm(ctx, question)
	if err != nil {
		logger.FromContext(ctx).Warn("confirmation failed", "project_id", id, "err", err)
		return false
	}
	if !ok {
		return false
	}
	retire(ctx, id)
	p.SetSelectedProjectID(ctx, 0)
	p.reload(ctx)
	notify(ctx, &p.ProjectChanged)
	return true
}

func (p *ProjectSelector) reload(ctx context.Context) {
	projects := p.svc.GetProjects(ctx, p.user)
	p.mu.Lock()
	p.projects = projects
	p.mu.Unlock()
	notify(ctx, &p.StateChanged)
}

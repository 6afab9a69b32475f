package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

// List shows the current page.
func (a *App) List(ctx context.Context) error {
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	return a.showPage(ctx, a.page)
}

func (a *App) NextPage(ctx context.Context) error {
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	if a.page >= a.lastPage() {
		fmt.Fprintln(a.out, "Already on the last page")
		return nil
	}
	return a.showPage(ctx, a.page+1)
}

func (a *App) PrevPage(ctx context.Context) error {
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	if a.page <= 1 {
		fmt.Fprintln(a.out, "Already on the first page")
		return nil
	}
	return a.showPage(ctx, a.page-1)
}

// GoToPage accepts 1 ≤ page ≤ total pages as of the last listing.
func (a *App) GoToPage(ctx context.Context, page int) error {
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	if page < 1 || page > a.lastPage() {
		return fmt.Errorf("%w: page must be between 1 and %d", common.ErrValidation, a.lastPage())
	}
	return a.showPage(ctx, page)
}

// Add creates a task, prompting for the title when none was given.
func (a *App) Add(ctx context.Context, title string) error {
	if err := a.requireSession(ctx); err != nil {
		return err
	}

	if title == "" {
		var err error
		if title, err = getSimpleText(a.reader, "Enter task title", a.out); err != nil {
			return err
		}
	}

	t, err := a.tasks.Add(ctx, title)
	if err != nil {
		return a.handleErr(ctx, err)
	}
	fmt.Fprintf(a.out, "Added %q\n", t.Title)
	return a.showPage(ctx, a.page)
}

func (a *App) Edit(ctx context.Context, ref, title string) error {
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	id, err := a.resolve(ref)
	if err != nil {
		return err
	}

	if title == "" {
		if title, err = getSimpleText(a.reader, "Enter new title", a.out); err != nil {
			return err
		}
	}

	if _, err := a.tasks.Rename(ctx, id, title); err != nil {
		return a.handleErr(ctx, err)
	}
	return a.showPage(ctx, a.page)
}

func (a *App) Done(ctx context.Context, ref string) error {
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	id, err := a.resolve(ref)
	if err != nil {
		return err
	}

	if _, err := a.tasks.Complete(ctx, id); err != nil {
		return a.handleErr(ctx, err)
	}
	return a.showPage(ctx, a.page)
}

func (a *App) Delete(ctx context.Context, ref string) error {
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	id, err := a.resolve(ref)
	if err != nil {
		return err
	}

	if err := a.tasks.Delete(ctx, id); err != nil {
		return a.handleErr(ctx, err)
	}
	fmt.Fprintln(a.out, "Task deleted")
	return a.showPage(ctx, a.page)
}

func (a *App) lastPage() int {
	if a.totalPages < 1 {
		return 1
	}
	return a.totalPages
}

// showPage fetches and prints page. A page past the end, left behind by a
// delete, falls back to the last page.
func (a *App) showPage(ctx context.Context, page int) error {
	p, err := a.tasks.Page(ctx, page)
	if err != nil {
		return a.handleErr(ctx, err)
	}
	a.setMode(ModeOnline)

	if len(p.Tasks) == 0 && p.TotalPages > 0 && page > p.TotalPages {
		return a.showPage(ctx, p.TotalPages)
	}

	a.page = max(p.CurrentPage, 1)
	a.totalPages = p.TotalPages
	a.rows = p.Tasks
	a.render(p)
	return nil
}

func (a *App) render(p *models.TaskPage) {
	if p.TotalTasks == 0 {
		fmt.Fprintln(a.out, "No tasks yet. Use 'add <title>' to create one.")
		return
	}

	fmt.Fprintf(a.out, "Tasks, page %d of %d (%d total)\n", a.page, a.lastPage(), p.TotalTasks)
	for i, t := range p.Tasks {
		mark := " "
		if t.Status == common.TaskStatusCompleted {
			mark = "x"
		}
		fmt.Fprintf(a.out, "%3d. [%s] %s  (%s)\n", i+1, mark, t.Title, t.ID)
	}
}

// resolve maps a row number of the current page to its task id. Anything
// that is not a number is taken as an id.
func (a *App) resolve(ref string) (string, error) {
	n, err := strconv.Atoi(ref)
	if err != nil {
		return ref, nil
	}
	if n < 1 || n > len(a.rows) {
		return "", fmt.Errorf("%w: no task #%d on this page", common.ErrValidation, n)
	}
	return a.rows[n-1].ID, nil
}

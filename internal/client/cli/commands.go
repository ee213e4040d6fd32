package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cvgenius/internal/client/models"
	"github.com/dmitrijs2005/cvgenius/internal/client/syncmgr"
)

var ErrNotFound = errors.New("cv not found")

func (a *App) New(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}

	cv := models.NewCV(title)
	if err := a.readFields(cv); err != nil {
		return err
	}
	return a.save(ctx, cv)
}

func (a *App) Edit(ctx context.Context, id string) error {
	cv, err := a.load(ctx, id)
	if err != nil {
		return err
	}

	for _, name := range cv.FieldNames() {
		fmt.Fprintf(a.out, "  %s = %v\n", name, cv.Document[name])
	}
	if err := a.readFields(cv); err != nil {
		return err
	}
	return a.save(ctx, cv)
}

func (a *App) readFields(cv *models.CV) error {
	lines, err := GetFields(a.reader, a.out)
	if err != nil {
		return err
	}
	fields, err := models.FieldsFromLines(lines)
	if err != nil {
		return err
	}
	for name, value := range fields {
		if err := cv.Set(name, value); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) save(ctx context.Context, cv *models.CV) error {
	if err := a.cvService.SaveCV(ctx, cv); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %s\n", cv.ID)
	return nil
}

func (a *App) load(ctx context.Context, id string) (*models.CV, error) {
	cv, err := a.cvService.GetCV(ctx, id)
	if err != nil {
		return nil, err
	}
	if cv == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return cv, nil
}

func (a *App) List(ctx context.Context) error {
	all, err := a.cvService.GetAllCVs(ctx)
	if err != nil {
		return err
	}
	a.printCVs(all)
	return nil
}

func (a *App) Drafts(ctx context.Context) error {
	drafts, err := a.cvService.ListDrafts(ctx)
	if err != nil {
		return err
	}
	a.printCVs(drafts)
	return nil
}

// printCVs marks ids still waiting for upload with "*".
func (a *App) printCVs(list []*models.CV) {
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No CVs")
		return
	}

	pending := make(map[string]struct{})
	for _, id := range a.sync.Pending() {
		pending[id] = struct{}{}
	}

	for _, cv := range list {
		mark := " "
		if _, ok := pending[cv.ID]; ok {
			mark = "*"
		}
		fmt.Fprintf(a.out, "%s %s  %-30s  %s\n", mark, cv.ID, cv.Title(), cv.LastModified.Local().Format(time.DateTime))
	}
}

func (a *App) Show(ctx context.Context, id string) error {
	cv, err := a.load(ctx, id)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(cv, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, string(b))
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.cvService.DeleteCV(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s\n", id)
	return nil
}

func (a *App) Sync(ctx context.Context) error {
	if !a.sync.Status().Online {
		fmt.Fprintf(a.out, "Offline: %d CV(s) pending\n", a.sync.Status().PendingCount)
		return nil
	}

	if err := a.sync.SyncNow(ctx); err != nil {
		if errors.Is(err, syncmgr.ErrPending) {
			fmt.Fprintf(a.out, "%d CV(s) still pending, will retry\n", a.sync.Status().PendingCount)
			return nil
		}
		return err
	}
	fmt.Fprintln(a.out, "All CVs synced")
	return nil
}

func (a *App) Status(_ context.Context) error {
	st := a.sync.Status()
	fmt.Fprintf(a.out, "online: %t, pending: %d, syncing: %t\n", st.Online, st.PendingCount, st.IsSyncing)
	for _, id := range a.sync.Pending() {
		fmt.Fprintf(a.out, "  %s\n", id)
	}
	return nil
}

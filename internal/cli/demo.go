package cli

import (
	"context"
	"fmt"
	"io"

	"libranet/internal/catalog"
	"libranet/internal/circulation"
)

// DemoItems are the items the demo starts from.
func DemoItems() []catalog.Item {
	return []catalog.Item{
		catalog.NewBook(1, "Clean Code", "Robert C. Martin", 464),
		catalog.NewAudioBook(2, "Atomic Habits", "James Clear", 510),
		catalog.NewEMagazine(3, "Tech Today", "Editorial", 42),
	}
}

// RunDemo walks svc through a fixed borrowing session and prints every step
// to out. Rejected operations are printed and the session continues; only
// failures outside the catalog rules are returned.
func RunDemo(ctx context.Context, svc circulation.Service, out io.Writer) error {
	p := NewPresenter(out)

	p.Section("Catalog")
	for _, item := range DemoItems() {
		if err := svc.AddItem(ctx, item); err != nil {
			return fmt.Errorf("failed to add %s: %w", item.Title(), err)
		}
		p.Item(item.Details())
	}

	p.Section("Borrowing")
	for _, loan := range []struct {
		id       int
		duration string
	}{
		{1, "5"},
		{2, "abc"},
		{3, "7"},
	} {
		res, err := svc.BorrowItem(ctx, loan.id, loan.duration)
		if err := report(p, err); err != nil {
			return err
		}
		if err == nil {
			p.Result(res)
		}
	}

	p.Section("Playing & Archiving")
	ev, err := svc.Play(ctx, 2)
	if err != nil {
		return err
	}
	p.Playback(ev)

	arch, err := svc.Archive(ctx, 3)
	if err != nil {
		return err
	}
	p.Archive(arch)

	p.Section("Fines")
	fines, err := svc.Fines(ctx)
	if err != nil {
		return err
	}
	p.Fines(fines)

	p.Section("Return")
	res, err := svc.ReturnItem(ctx, 1, 2)
	if err := report(p, err); err != nil {
		return err
	}
	if err == nil {
		p.Result(res)
	}

	p.Section("Audiobooks")
	found, err := svc.FindByType(ctx, catalog.TypeAudioBook)
	if err != nil {
		return err
	}
	p.Items(found)

	return nil
}

// report prints a rejected operation and returns err only if it is not a
// catalog rule violation.
func report(p *Presenter, err error) error {
	if err == nil {
		return nil
	}
	if catalog.Code(err) == catalog.CodeInternal {
		return err
	}
	p.Error(err)
	return nil
}

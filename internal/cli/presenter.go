package cli

import (
	"fmt"
	"io"

	"libranet/internal/catalog"
	"libranet/internal/cli/scheme/colours"
	"libranet/internal/eventstore"
)

// Presenter writes catalog results to a console.
type Presenter struct {
	out io.Writer
}

func NewPresenter(out io.Writer) *Presenter {
	return &Presenter{out: out}
}

func (p *Presenter) Section(name string) {
	colours.Section.Fprintf(p.out, "\n--- %s ---\n", name)
}

func (p *Presenter) Item(d catalog.Description) {
	id := colours.Available
	if !d.Available {
		id = colours.Borrowed
	}
	id.Fprintf(p.out, "[%d] ", d.ID)
	fmt.Fprintln(p.out, d.String())
}

func (p *Presenter) Items(items []catalog.Description) {
	if len(items) == 0 {
		colours.Warning.Fprintln(p.out, "No items found.")
		return
	}
	for _, d := range items {
		p.Item(d)
	}
}

func (p *Presenter) Result(res catalog.Result) {
	colours.Success.Fprintln(p.out, res.Message)
	if res.LateDays > 0 {
		colours.Fine.Fprintf(p.out, "Late by %d days, fine Rs %g\n", res.LateDays, res.Fine)
	}
}

func (p *Presenter) Playback(ev catalog.PlaybackEvent) {
	colours.Success.Fprintln(p.out, ev.String())
}

func (p *Presenter) Archive(ev catalog.ArchiveEvent) {
	colours.Success.Fprintln(p.out, ev.String())
}

// Fines prints the ledger in the order it was recorded.
func (p *Presenter) Fines(fines []catalog.FineEntry) {
	colours.Heading.Fprintln(p.out, "Outstanding fines:")
	var total float64
	for _, f := range fines {
		fmt.Fprintf(p.out, "Item ID %d: Rs %g\n", f.ItemID, f.Amount)
		total += f.Amount
	}
	colours.Fine.Fprintf(p.out, "Total: Rs %g\n", total)
}

func (p *Presenter) History(events []eventstore.Event) {
	if len(events) == 0 {
		colours.Warning.Fprintln(p.out, "No history.")
		return
	}
	for _, ev := range events {
		colours.Info.Fprintf(p.out, "v%d ", ev.Version)
		fmt.Fprintf(p.out, "%s %s %s\n", ev.CreatedAt.Format("2006-01-02 15:04:05"), ev.EventType, string(ev.EventData))
	}
}

func (p *Presenter) Error(err error) {
	colours.Error.Fprintf(p.out, "Error: %v\n", err)
}

func (p *Presenter) Warn(msg string) {
	colours.Warning.Fprintln(p.out, msg)
}
